// ABOUTME: Entity store state and pure reducer for admin posts.
// ABOUTME: Every mutation is an Action applied by Reduce(State, Action) State.
package store

import (
	"slices"

	"github.com/2389-research/postadmin/internal/models"
)

// NoticeKind distinguishes success notices from error notices.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is the transient result of the last completed mutation.
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
}

// IsZero returns true if there is no pending notice.
func (n Notice) IsZero() bool {
	return n.Kind == NoticeNone && n.Title == "" && n.Message == ""
}

// State is the authoritative client-side view of the posts.
type State struct {
	Items     []models.Post
	Active    *models.Post
	IsSaving  bool
	Notice    Notice
	Snapshot  []models.Post // unfiltered list, captured on first filter
	HighestID int           // highest id ever seen or assigned
}

// Clone returns a deep copy so callers cannot mutate store-owned slices.
func (s State) Clone() State {
	out := s
	out.Items = slices.Clone(s.Items)
	out.Snapshot = slices.Clone(s.Snapshot)
	if s.Active != nil {
		active := *s.Active
		out.Active = &active
	}
	return out
}

// Filtering returns true while a filter snapshot is held.
func (s State) Filtering() bool {
	return len(s.Snapshot) > 0
}

// Find returns the item with the given id.
func (s State) Find(id int) (models.Post, bool) {
	for _, p := range s.Items {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

type (
	// MarkSaving flags an outstanding create/update round-trip.
	MarkSaving struct{}
	// ReplaceAll commits a freshly loaded list.
	ReplaceAll struct{ Posts []models.Post }
	// Create appends a persisted post.
	Create struct{ Post models.Post }
	// Update replaces the post with the same id.
	Update struct{ Post models.Post }
	// MarkActive selects the target of an edit or delete.
	MarkActive struct{ Post models.Post }
	// ApplyFilter narrows Items to posts matching Query.
	ApplyFilter struct{ Query string }
	// DeleteByID removes a post from Items and the snapshot.
	DeleteByID struct{ ID int }
	// SaveFailed ends a failed round-trip without touching Items.
	SaveFailed struct{ Err error }
	// LoadFailed records a failed list fetch without touching Items.
	LoadFailed struct{ Err error }
	// ClearNotice consumes the pending notice.
	ClearNotice struct{}
	// ClearSnapshot drops the pre-filter snapshot.
	ClearSnapshot struct{}
)

func (MarkSaving) isAction()    {}
func (ReplaceAll) isAction()    {}
func (Create) isAction()        {}
func (Update) isAction()        {}
func (MarkActive) isAction()    {}
func (ApplyFilter) isAction()   {}
func (DeleteByID) isAction()    {}
func (SaveFailed) isAction()    {}
func (LoadFailed) isAction()    {}
func (ClearNotice) isAction()   {}
func (ClearSnapshot) isAction() {}

// Reduce applies an action to a copy of state and returns the result.
// The input state is never modified.
func Reduce(state State, action Action) State {
	s := state.Clone()

	switch a := action.(type) {
	case MarkSaving:
		s.IsSaving = true
		s.Notice = Notice{}

	case ReplaceAll:
		s.Items = slices.Clone(a.Posts)
		if s.Items == nil {
			s.Items = []models.Post{}
		}
		s.Notice = Notice{}
		s.HighestID = max(s.HighestID, maxID(s.Items))

	case Create:
		post := a.Post
		if post.ID != 0 && (containsID(s.Items, post.ID) || containsID(s.Snapshot, post.ID)) {
			post.ID = s.HighestID + 1
		}
		s.Items = append(s.Items, post)
		if s.Filtering() {
			s.Snapshot = append(s.Snapshot, post)
		}
		s.HighestID = max(s.HighestID, post.ID)
		s.IsSaving = false
		s.Notice = Notice{
			Kind:    NoticeSuccess,
			Title:   "Created Post",
			Message: post.Title + ", post created correctly",
		}

	case Update:
		s.Items = replaceByID(s.Items, a.Post)
		s.Snapshot = replaceByID(s.Snapshot, a.Post)
		s.IsSaving = false
		s.Notice = Notice{
			Kind:    NoticeSuccess,
			Title:   "Updated Post",
			Message: a.Post.Title + ", post updated correctly",
		}

	case MarkActive:
		post := a.Post
		s.Active = &post
		s.Notice = Notice{}

	case ApplyFilter:
		s.Active = nil
		if len(s.Snapshot) == 0 {
			s.Snapshot = slices.Clone(s.Items)
		}
		s.Items = filterPosts(s.Snapshot, a.Query)

	case DeleteByID:
		s.Active = nil
		removed, found := s.Find(a.ID)
		if !found {
			if i := indexByID(s.Snapshot, a.ID); i >= 0 {
				removed, found = s.Snapshot[i], true
			}
		}
		s.Items = slices.DeleteFunc(s.Items, func(p models.Post) bool { return p.ID == a.ID })
		s.Snapshot = slices.DeleteFunc(s.Snapshot, func(p models.Post) bool { return p.ID == a.ID })
		if len(s.Snapshot) > 0 {
			s.Items = slices.Clone(s.Snapshot)
		}
		if found {
			s.Notice = Notice{
				Kind:    NoticeSuccess,
				Title:   "Deleted Post",
				Message: removed.Title + ", post deleted correctly",
			}
		}

	case SaveFailed:
		s.IsSaving = false
		s.Notice = errorNotice("Save failed", a.Err)

	case LoadFailed:
		s.Notice = errorNotice("Load failed", a.Err)

	case ClearNotice:
		s.Notice = Notice{}

	case ClearSnapshot:
		s.Snapshot = nil
	}

	return s
}

func errorNotice(title string, err error) Notice {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Notice{Kind: NoticeError, Title: title, Message: msg}
}

func filterPosts(posts []models.Post, query string) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out
}

func replaceByID(posts []models.Post, post models.Post) []models.Post {
	if i := indexByID(posts, post.ID); i >= 0 {
		posts[i] = post
	}
	return posts
}

func indexByID(posts []models.Post, id int) int {
	return slices.IndexFunc(posts, func(p models.Post) bool { return p.ID == id })
}

func containsID(posts []models.Post, id int) bool {
	return indexByID(posts, id) >= 0
}

func maxID(posts []models.Post) int {
	highest := 0
	for _, p := range posts {
		highest = max(highest, p.ID)
	}
	return highest
}
