// ABOUTME: Core data model for admin posts and draft validation.
// ABOUTME: Provides the Post entity and the required/min-length field checks.
package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
)

// DefaultUserID is assigned to drafts created without an owner.
const DefaultUserID = 1

// MinFieldLength is the minimum number of characters for title and body.
const MinFieldLength = 2

// Post is the single record type managed by postadmin.
// An ID of 0 means the post has not been persisted yet.
type Post struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// NewDraft creates an unpersisted post owned by the default user.
func NewDraft(title, body string) Post {
	return Post{
		Title:  title,
		Body:   body,
		UserID: DefaultUserID,
	}
}

// IsDraft returns true if the post has no id yet.
func (p Post) IsDraft() bool {
	return p.ID == 0
}

// Matches reports whether the post matches a filter query: the id equals the
// query as a number, or title or body contains it. Matching is case-sensitive.
func (p Post) Matches(query string) bool {
	if id, ok := parseID(query); ok && p.ID == id {
		return true
	}
	return strings.Contains(p.Title, query) || strings.Contains(p.Body, query)
}

// Key returns the slug form of the title, used as an alternate lookup key.
func (p Post) Key() string {
	return slug.Make(p.Title)
}

// NormalizeKey prepares a lookup key: numeric ids pass through, anything
// else is reduced to its slug.
func NormalizeKey(idOrKey string) string {
	idOrKey = strings.TrimSpace(idOrKey)
	if _, ok := parseID(idOrKey); ok {
		return idOrKey
	}
	return slug.Make(idOrKey)
}

func parseID(s string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return id, true
}

// ValidationErrors maps a form field name to its error message.
type ValidationErrors map[string]string

// Error implements error.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "invalid post: " + strings.Join(parts, "; ")
}

// ValidateDraft checks the required fields of a post before it is submitted.
// Returns nil when the post is valid.
func ValidateDraft(p Post) error {
	errs := ValidationErrors{}
	checkField(errs, "title", p.Title)
	checkField(errs, "body", p.Body)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkField(errs ValidationErrors, name, value string) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		errs[name] = "this field is required"
	case utf8.RuneCountInString(value) < MinFieldLength:
		errs[name] = fmt.Sprintf("minimum %d characters", MinFieldLength)
	}
}
