// ABOUTME: Free-text search state, kept apart from the entity store.
// ABOUTME: Provides the filter reducer for set and reset actions.
package store

import "strings"

// FilterState holds the current search text.
type FilterState struct {
	SearchText string
}

// FilterAction is a transition understood by ReduceFilter.
type FilterAction interface {
	isFilterAction()
}

type (
	// SetSearchText stores Text with leading whitespace trimmed.
	SetSearchText struct{ Text string }
	// ResetSearchText clears the search text.
	ResetSearchText struct{}
)

func (SetSearchText) isFilterAction()   {}
func (ResetSearchText) isFilterAction() {}

// ReduceFilter applies a filter action.
func ReduceFilter(state FilterState, action FilterAction) FilterState {
	switch a := action.(type) {
	case SetSearchText:
		state.SearchText = strings.TrimLeft(a.Text, " \t\r\n")
	case ResetSearchText:
		state.SearchText = ""
	}
	return state
}
