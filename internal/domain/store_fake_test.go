package domain

import (
	"context"
	"sort"
	"sync"
)

// fakeStore is a test double for Store. err, when set, is returned by every call.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[int64]Bookmark
	nextID  int64
	inserts int
	selects int
	err     error

	// dropBeforeWrite simulates a concurrent delete landing between the
	// existence gate and the write.
	dropBeforeWrite bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[int64]Bookmark)}
}

func (f *fakeStore) SelectAll(ctx context.Context) ([]Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Bookmark, 0, len(f.rows))
	for _, b := range f.rows {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.rows)), nil
}

func (f *fakeStore) SelectByID(ctx context.Context, id int64) (*Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.selects++
	b, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeStore) Insert(ctx context.Context, b Bookmark) (Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Bookmark{}, f.err
	}
	f.inserts++
	f.nextID++
	b.ID = f.nextID
	f.rows[b.ID] = b
	return b, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, p BookmarkPatch) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.dropBeforeWrite {
		delete(f.rows, id)
	}
	b, ok := f.rows[id]
	if !ok {
		return 0, nil
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.URL != nil {
		b.URL = *p.URL
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Rating != nil {
		b.Rating = *p.Rating
	}
	f.rows[id] = b
	return 1, nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.dropBeforeWrite {
		delete(f.rows, id)
	}
	if _, ok := f.rows[id]; !ok {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.err
}
