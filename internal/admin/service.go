// ABOUTME: Orchestration of multi-step post operations over the gateway and store.
// ABOUTME: Load, create with provisional ids, save/update, delete active, and filtering.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/2389-research/postadmin/internal/models"
	"github.com/2389-research/postadmin/internal/store"
)

// Gateway is the subset of the backend client the service needs.
type Gateway interface {
	List(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, draft models.Post) (*models.Post, error)
}

// Service sequences gateway calls with store mutations. It is the only
// writer of the store.
type Service struct {
	gateway Gateway
	store   *store.Store
	logger  zerolog.Logger
}

// ServiceOption configures optional Service dependencies.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a service over the given gateway and store.
func NewService(gw Gateway, st *store.Store, opts ...ServiceOption) (*Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}

	s := &Service{
		gateway: gw,
		store:   st,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Store returns the store the service writes to.
func (s *Service) Store() *store.Store {
	return s.store
}

// LoadAll fetches the post list. When a filter snapshot is held it is
// restored instead of the fetched list. A failed fetch leaves the current
// items alone and records an error notice.
func (s *Service) LoadAll(ctx context.Context) error {
	posts, err := s.gateway.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load posts")
		s.store.Dispatch(store.LoadFailed{Err: err})
		return fmt.Errorf("failed to load posts: %w", err)
	}

	if snapshot := s.store.State().Snapshot; len(snapshot) > 0 {
		s.logger.Debug().Int("snapshot", len(snapshot)).Int("fetched", len(posts)).Msg("restoring filter snapshot")
		s.store.Dispatch(store.ReplaceAll{Posts: snapshot})
		return nil
	}

	s.store.Dispatch(store.ReplaceAll{Posts: posts})
	s.logger.Debug().Int("count", len(posts)).Msg("loaded posts")
	return nil
}

// CreatePost validates a draft, assigns a provisional id when the list is
// loaded, persists it through the backend and commits it to the store.
func (s *Service) CreatePost(ctx context.Context, draft models.Post) (models.Post, error) {
	if err := models.ValidateDraft(draft); err != nil {
		return models.Post{}, err
	}
	if draft.UserID == 0 {
		draft.UserID = models.DefaultUserID
	}

	s.store.Dispatch(store.MarkSaving{})

	if draft.ID == 0 {
		// An empty filtered view still holds the full list in its snapshot.
		if state := s.store.State(); len(state.Items) == 0 && !state.Filtering() {
			if err := s.LoadAll(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("reload before create failed")
			}
		}
		if state := s.store.State(); len(state.Items) > 0 || state.Filtering() {
			draft.ID = s.store.NextProvisionalID()
		}
	}

	created, err := s.gateway.Create(ctx, draft)
	if err != nil {
		s.logger.Error().Err(err).Str("title", draft.Title).Msg("failed to create post")
		s.store.Dispatch(store.SaveFailed{Err: err})
		return models.Post{}, fmt.Errorf("failed to create post: %w", err)
	}

	if draft.ID == 0 {
		draft.ID = created.ID
	}

	s.store.Dispatch(store.Create{Post: draft})
	committed := s.lastItem()
	s.logger.Info().Int("id", committed.ID).Str("title", committed.Title).Msg("post created")
	return committed, nil
}

// SaveOrUpdate commits an edited post in place when it has an id, or adds it
// as a new post otherwise. Updates are applied locally only.
func (s *Service) SaveOrUpdate(post models.Post) (models.Post, error) {
	if err := models.ValidateDraft(post); err != nil {
		return models.Post{}, err
	}

	s.store.Dispatch(store.MarkSaving{})

	if post.ID > 0 {
		s.store.Dispatch(store.Update{Post: post})
		s.logger.Info().Int("id", post.ID).Msg("post updated")
		return post, nil
	}

	if post.UserID == 0 {
		post.UserID = models.DefaultUserID
	}
	post.ID = s.store.NextProvisionalID()
	s.store.Dispatch(store.Create{Post: post})
	return s.lastItem(), nil
}

// SelectPost marks a post as the target of the next edit or delete.
func (s *Service) SelectPost(post models.Post) {
	s.store.Dispatch(store.MarkActive{Post: post})
}

// DeleteActive removes the active post and reports whether anything was
// removed. With nothing active it is a no-op.
func (s *Service) DeleteActive() bool {
	active := s.store.State().Active
	if active == nil {
		s.logger.Debug().Msg("delete requested with no active post")
		return false
	}
	s.store.Dispatch(store.DeleteByID{ID: active.ID})
	s.logger.Info().Int("id", active.ID).Msg("post deleted")
	return true
}

// ApplyFilter stores the search text and narrows the list when the text is
// not blank.
func (s *Service) ApplyFilter(text string) {
	s.store.DispatchFilter(store.SetSearchText{Text: text})
	query := s.store.Filter().SearchText
	if strings.TrimSpace(query) == "" {
		return
	}
	s.store.Dispatch(store.ApplyFilter{Query: query})
}

// ResetFilter clears the search text and reloads the list.
func (s *Service) ResetFilter(ctx context.Context) error {
	s.store.DispatchFilter(store.ResetSearchText{})
	return s.LoadAll(ctx)
}

// ReloadFresh drops the filter snapshot and search text, then reloads the
// list from the backend. Local-only edits held in the snapshot are lost.
func (s *Service) ReloadFresh(ctx context.Context) error {
	s.store.DispatchFilter(store.ResetSearchText{})
	s.store.Dispatch(store.ClearSnapshot{})
	return s.LoadAll(ctx)
}

// Notice consumes the pending operation notice.
func (s *Service) Notice() (store.Notice, bool) {
	return s.store.ConsumeNotice()
}

func (s *Service) lastItem() models.Post {
	items := s.store.State().Items
	if len(items) == 0 {
		return models.Post{}
	}
	return items[len(items)-1]
}
