package domain

import "context"

const (
	// MinRating and MaxRating bound Bookmark.Rating, inclusive.
	MinRating = 1
	MaxRating = 5
)

// Bookmark is the single persisted record of the service.
//
// It is either fully present in the store or absent; there is no draft
// state. Values read from a Store are raw: anything leaving the service
// goes through Sanitizer first.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the Store on insert and never reused.
	ID int64 `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// Title is free text, HTML-sanitized on output.
	Title string `json:"title"`

	// URL is stored as given. It is not checked for well-formedness.
	URL string `json:"url"`

	// Description is free text, HTML-sanitized on output.
	Description string `json:"description"`

	// Rating is between MinRating and MaxRating.
	Rating int `json:"rating"`
}

// NewBookmark is the create payload. Pointer fields distinguish a field
// that was omitted (or null) from one sent with a zero value.
type NewBookmark struct {
	Title       *string `json:"title" validate:"required"`
	URL         *string `json:"url" validate:"required"`
	Description *string `json:"description" validate:"required"`
	Rating      *int    `json:"rating" validate:"required,min=1,max=5"`
}

// BookmarkPatch carries the fields to change on update. Nil means untouched.
type BookmarkPatch struct {
	Title       *string `json:"title"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
	Rating      *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

// IsEmpty reports whether the patch changes nothing.
func (p BookmarkPatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Description == nil && p.Rating == nil
}

// Store is the persistence backend the service delegates to.
// Implementations must be safe for concurrent use.
type Store interface {
	// SelectAll returns every bookmark in the backend's natural order.
	SelectAll(ctx context.Context) ([]Bookmark, error)

	// Count returns how many bookmarks are stored.
	Count(ctx context.Context) (int64, error)

	// SelectByID returns nil, nil when no row matches.
	SelectByID(ctx context.Context, id int64) (*Bookmark, error)

	// Insert stores b (its ID is ignored) and returns the stored row with
	// the generated ID.
	Insert(ctx context.Context, b Bookmark) (Bookmark, error)

	// Update applies the non-nil fields of p and returns the number of rows changed.
	Update(ctx context.Context, id int64, p BookmarkPatch) (int64, error)

	// DeleteByID returns the number of rows removed. Deleting an absent
	// row is not an error and returns 0.
	DeleteByID(ctx context.Context, id int64) (int64, error)

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}
