package domain

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/bookmarks/internal/logger"
)

// BookmarkService is the resource logic behind the /bookmarks routes.
//
// It validates input before touching the store, gates by-id operations on
// existence, and sanitizes every bookmark it returns. It holds no bookmark
// state of its own: each call is one independent round trip to the Store.
type BookmarkService struct {
	store     Store
	sanitizer *Sanitizer
	logger    logger.Logger
}

// NewBookmarkService creates a service over store.
func NewBookmarkService(store Store, sanitizer *Sanitizer, log logger.Logger) *BookmarkService {
	return &BookmarkService{
		store:     store,
		sanitizer: sanitizer,
		logger:    log,
	}
}

// List returns all bookmarks, sanitized. An empty store yields an empty,
// non-nil slice.
func (s *BookmarkService) List(ctx context.Context) ([]Bookmark, error) {
	rows, err := s.store.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	out := make([]Bookmark, 0, len(rows))
	for _, b := range rows {
		out = append(out, s.sanitizer.Bookmark(b))
	}
	return out, nil
}

// Get returns the bookmark with the given id, sanitized, or ErrNotFound.
func (s *BookmarkService) Get(ctx context.Context, id int64) (Bookmark, error) {
	b, ok, err := s.lookup(ctx, id)
	if err != nil {
		return Bookmark{}, err
	}
	if !ok {
		return Bookmark{}, ErrNotFound
	}
	return s.sanitizer.Bookmark(*b), nil
}

// Create validates in, inserts it and returns the stored row, sanitized.
// A *ValidationError means nothing was written.
func (s *BookmarkService) Create(ctx context.Context, in NewBookmark) (Bookmark, error) {
	if err := ValidateNew(in); err != nil {
		return Bookmark{}, err
	}

	stored, err := s.store.Insert(ctx, Bookmark{
		Title:       *in.Title,
		URL:         *in.URL,
		Description: *in.Description,
		Rating:      *in.Rating,
	})
	if err != nil {
		return Bookmark{}, fmt.Errorf("insert bookmark: %w", err)
	}

	s.logger.Info("bookmark created", logger.Int64("id", stored.ID))
	return s.sanitizer.Bookmark(stored), nil
}

// Update applies p to an existing bookmark. The patch is validated before
// the store is touched.
func (s *BookmarkService) Update(ctx context.Context, id int64, p BookmarkPatch) error {
	if err := ValidatePatch(p); err != nil {
		return err
	}

	if _, ok, err := s.lookup(ctx, id); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}

	n, err := s.store.Update(ctx, id, p)
	if err != nil {
		return fmt.Errorf("update bookmark %d: %w", id, err)
	}
	if n == 0 {
		// Removed between the gate and the write.
		return ErrNotFound
	}

	s.logger.Info("bookmark updated", logger.Int64("id", id))
	return nil
}

// Delete removes an existing bookmark. Of two concurrent deletes of the same
// id, the one that removes nothing reports ErrNotFound.
func (s *BookmarkService) Delete(ctx context.Context, id int64) error {
	if _, ok, err := s.lookup(ctx, id); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}

	n, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bookmark %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Info("bookmark deleted", logger.Int64("id", id))
	return nil
}

// Count returns how many bookmarks are stored, without reading them.
func (s *BookmarkService) Count(ctx context.Context) (int64, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return n, nil
}

// Ping reports whether the backing store is reachable.
func (s *BookmarkService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// lookup is the existence gate: ok is false when no bookmark has this id.
// Ids below 1 are never assigned, so they are absent without a round trip.
func (s *BookmarkService) lookup(ctx context.Context, id int64) (*Bookmark, bool, error) {
	if id < 1 {
		s.logger.Warn("bookmark not found", logger.Int64("id", id))
		return nil, false, nil
	}

	b, err := s.store.SelectByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("select bookmark %d: %w", id, err)
	}
	if b == nil {
		s.logger.Warn("bookmark not found", logger.Int64("id", id))
		return nil, false, nil
	}
	return b, true, nil
}
