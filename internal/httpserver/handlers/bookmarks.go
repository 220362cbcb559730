package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarks/internal/domain"
	"github.com/MrSnakeDoc/bookmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/bookmarks/internal/logger"
)

// maxBodyBytes caps request bodies on create and update.
const maxBodyBytes = 1 << 20

// ListBookmarks handles GET /bookmarks.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := d.Service.List(r.Context())
		if err != nil {
			writeServiceError(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, all)
	}
}

// CreateBookmark handles POST /bookmarks.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.NewBookmark
		if !decodeBody(w, r, &in) {
			return
		}

		b, err := d.Service.Create(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, d.Logger, err)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("/bookmarks/%d", b.ID))
		respond.JSON(w, http.StatusCreated, b)
	}
}

// GetBookmark handles GET /bookmarks/{id}.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookmarkID(w, r)
		if !ok {
			return
		}

		b, err := d.Service.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, b)
	}
}

// UpdateBookmark handles PATCH /bookmarks/{id}.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookmarkID(w, r)
		if !ok {
			return
		}

		var p domain.BookmarkPatch
		if !decodeBody(w, r, &p) {
			return
		}

		if err := d.Service.Update(r.Context(), id, p); err != nil {
			writeServiceError(w, r, d.Logger, err)
			return
		}
		respond.NoContent(w)
	}
}

// DeleteBookmark handles DELETE /bookmarks/{id}.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookmarkID(w, r)
		if !ok {
			return
		}

		if err := d.Service.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, d.Logger, err)
			return
		}
		respond.NoContent(w)
	}
}

// bookmarkID parses the {id} path segment. Anything that is not an integer
// cannot name a bookmark, so it is answered with 404.
func bookmarkID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusNotFound, domain.NotFoundMessage)
		return 0, false
	}
	return id, true
}

// decodeBody reads a JSON object into dst. An empty body is read as {} and
// leaves dst untouched. It writes a 400 and returns false when the body is
// not valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidJSON)
		return false
	}
	// Trailing data after the object.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidJSON)
		return false
	}
	return true
}

// writeServiceError maps service errors to responses. Backend failures are
// logged with their cause; the client only sees "server error".
func writeServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrNotFound):
		respond.Error(w, http.StatusNotFound, domain.NotFoundMessage)
	default:
		log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
		respond.Error(w, http.StatusInternalServerError, respond.MsgServerError)
	}
}
