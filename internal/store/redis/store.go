// Package redis implements domain.Store on Redis, so that several service
// instances can share one set of bookmarks.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookmarks/internal/domain"
)

// Options configures the Redis client.
type Options struct {
	Addr         string        // Redis address (ex: "localhost:6379")
	User         string        // Optional username
	Password     string        // Optional password
	DB           int           // Redis DB number
	DialTimeout  time.Duration // Redis dial timeout
	ReadTimeout  time.Duration // Redis read timeout
	WriteTimeout time.Duration // Redis write timeout
	PoolSize     int           // Redis connection pool size
}

// NewClient builds a client from opts. It does not dial; readiness is
// checked by the caller.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})
}

// Store handles Redis operations for bookmarks
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// record is the stored JSON form. The ID lives in the key.
type record struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Rating      int    `json:"rating"`
}

func toRecord(b domain.Bookmark) record {
	return record{Title: b.Title, URL: b.URL, Description: b.Description, Rating: b.Rating}
}

func (r record) bookmark(id int64) domain.Bookmark {
	return domain.Bookmark{ID: id, Title: r.Title, URL: r.URL, Description: r.Description, Rating: r.Rating}
}

// SelectAll retrieves all bookmarks in ascending ID order
func (s *Store) SelectAll(ctx context.Context) ([]domain.Bookmark, error) {
	ids, err := s.client.ZRange(ctx, KeyIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(ids))
	if len(ids) == 0 {
		return bookmarks, nil
	}

	keys := make([]string, 0, len(ids))
	parsed := make([]int64, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bookmark ID %q in index: %w", raw, err)
		}
		parsed = append(parsed, id)
		keys = append(keys, BookmarkKey(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	for i, v := range values {
		// Deleted between ZRANGE and MGET.
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected value type %T for bookmark %d", v, parsed[i])
		}
		var rec record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bookmark %d: %w", parsed[i], err)
		}
		bookmarks = append(bookmarks, rec.bookmark(parsed[i]))
	}

	return bookmarks, nil
}

// Count returns the number of indexed bookmarks
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, KeyIndex).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return n, nil
}

// SelectByID retrieves a bookmark, or nil if it does not exist
func (s *Store) SelectByID(ctx context.Context, id int64) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}

	b := rec.bookmark(id)
	return &b, nil
}

// Insert draws a new ID from the sequence and stores the bookmark
func (s *Store) Insert(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	id, err := s.client.Incr(ctx, KeySequence).Result()
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to allocate bookmark ID: %w", err)
	}

	rec := toRecord(b)
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, BookmarkKey(id), data, 0)
		pipe.ZAdd(ctx, KeyIndex, redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
		return nil
	})
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to save bookmark: %w", err)
	}

	return rec.bookmark(id), nil
}

// maxUpdateRetries bounds how often Update retries after a concurrent write
// to the same key aborted its transaction.
const maxUpdateRetries = 16

// Update merges p into the stored bookmark inside WATCH/MULTI, so concurrent
// patches of the same bookmark never overwrite each other. SET XX keeps a
// bookmark deleted in the meantime from coming back.
func (s *Store) Update(ctx context.Context, id int64, p domain.BookmarkPatch) (int64, error) {
	if p.IsEmpty() {
		return 0, nil
	}

	key := BookmarkKey(id)
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		var n int64
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			var err error
			n, err = updateTx(ctx, tx, key, p)
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
	return 0, fmt.Errorf("failed to update bookmark %d: too much contention", id)
}

// updateTx runs one optimistic read-merge-write of key under WATCH.
func updateTx(ctx context.Context, tx *redis.Tx, key string, p domain.BookmarkPatch) (int64, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	if p.Title != nil {
		rec.Title = *p.Title
	}
	if p.URL != nil {
		rec.URL = *p.URL
	}
	if p.Description != nil {
		rec.Description = *p.Description
	}
	if p.Rating != nil {
		rec.Rating = *p.Rating
	}

	data, err = json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	var set *redis.BoolCmd
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		set = pipe.SetXX(ctx, key, data, 0)
		return nil
	})
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return 0, err
	case errors.Is(err, redis.Nil):
		// SET XX found no key.
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to update bookmark: %w", err)
	}
	if !set.Val() {
		return 0, nil
	}
	return 1, nil
}

// DeleteByID removes a bookmark and its index entry
func (s *Store) DeleteByID(ctx context.Context, id int64) (int64, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, BookmarkKey(id))
		pipe.ZRem(ctx, KeyIndex, strconv.FormatInt(id, 10))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return del.Val(), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
