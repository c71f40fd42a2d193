package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

var testUser = domain.User{ID: "user-1", Email: "owner@example.com", FullName: "Asha Rao"}

type filterCall struct {
	where domain.Predicate
	order domain.Order
	limit int
}

type updateCall struct {
	id    string
	patch domain.Patch
}

type collectionFake[T any] struct {
	mu          sync.Mutex
	created     []T
	records     []T
	filterCalls []filterCall
	updates     []updateCall
	createErr   error
	filterErr   error
	updateErr   error
	filterFn    func(where domain.Predicate) ([]T, error)
}

func (f *collectionFake[T]) Create(_ context.Context, record *T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *record)
	return nil
}

func (f *collectionFake[T]) List(_ context.Context, order domain.Order, limit int) ([]T, error) {
	return f.Filter(context.Background(), nil, order, limit)
}

func (f *collectionFake[T]) Filter(_ context.Context, where domain.Predicate, order domain.Order, limit int) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filterCalls = append(f.filterCalls, filterCall{where: where, order: order, limit: limit})
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	if f.filterFn != nil {
		return f.filterFn(where)
	}
	out := make([]T, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *collectionFake[T]) Update(_ context.Context, id string, patch domain.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, updateCall{id: id, patch: patch})
	return nil
}

type storageFake struct {
	uploads []string
	bodies  []string
	failOn  map[string]error
	emptyOn map[string]bool
	files   map[string]string
}

func (f *storageFake) Upload(_ context.Context, filename, _ string, body io.Reader) (domain.StoredFile, error) {
	if err := f.failOn[filename]; err != nil {
		return domain.StoredFile{}, err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return domain.StoredFile{}, err
	}
	f.uploads = append(f.uploads, filename)
	f.bodies = append(f.bodies, string(raw))
	if f.emptyOn[filename] {
		return domain.StoredFile{}, nil
	}
	return domain.StoredFile{URL: "https://files.test/" + filename, Key: filename}, nil
}

func (f *storageFake) Open(_ context.Context, fileURL string) (io.ReadCloser, error) {
	content, ok := f.files[fileURL]
	if !ok {
		return nil, errors.New("missing file")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

type aiFake struct {
	mu         sync.Mutex
	requests   []domain.AIRequest
	text       string
	textErr    error
	structured func(req domain.AIRequest) (json.RawMessage, error)
	// block, when set, holds InvokeText until it is closed.
	block   chan struct{}
	started chan struct{}
}

func (f *aiFake) InvokeText(ctx context.Context, req domain.AIRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.text, nil
}

func (f *aiFake) InvokeStructured(_ context.Context, req domain.AIRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.structured == nil {
		return json.RawMessage(`{}`), nil
	}
	return f.structured(req)
}

func (f *aiFake) lastRequest() domain.AIRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return domain.AIRequest{}
	}
	return f.requests[len(f.requests)-1]
}

type invalidateCall struct {
	owner string
	names []string
}

type cacheFake struct {
	mu          sync.Mutex
	values      map[string]any
	pending     map[string]uint64
	tokens      uint64
	gets        int
	invalidated []invalidateCall
}

func newCacheFake() *cacheFake {
	return &cacheFake{values: map[string]any{}, pending: map[string]uint64{}}
}

func (f *cacheFake) Get(key domain.QueryKey) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.values[key.String()]
	return v, ok
}

func (f *cacheFake) Reserve(key domain.QueryKey) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens++
	f.pending[key.String()] = f.tokens
	return f.tokens
}

func (f *cacheFake) Set(key domain.QueryKey, value any, token uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending[key.String()] != token {
		return false
	}
	delete(f.pending, key.String())
	f.values[key.String()] = value
	return true
}

func (f *cacheFake) Invalidate(_ context.Context, owner string, names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, invalidateCall{owner: owner, names: append([]string(nil), names...)})
	for _, name := range names {
		delete(f.values, domain.QueryKey{Owner: owner, Name: name}.String())
		delete(f.pending, domain.QueryKey{Owner: owner, Name: name}.String())
	}
}

func (f *cacheFake) invalidationCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.invalidated {
		for _, got := range call.names {
			if got == name {
				n++
			}
		}
	}
	return n
}
