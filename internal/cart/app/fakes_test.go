package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

var errBoom = errors.New("boom")

type fakeStore struct {
	mu      sync.Mutex
	records map[string]domain.Record
	seq     int
	calls   []string

	failList   error
	failCreate error
	failUpdate error
	failDelete error

	// gate, when set, holds every call until it is closed.
	gate chan struct{}

	// listGate holds only ListRecords; listing is signalled when a list starts waiting on it.
	listGate chan struct{}
	listing  chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]domain.Record)}
}

func (f *fakeStore) wait(ctx context.Context) error {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeStore) seed(userID string, p domain.Product, qty int) domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r := domain.Record{ID: fmt.Sprintf("rec-%d", f.seq), UserID: userID, ProductID: p.ID, Product: p, Quantity: qty}
	f.records[r.ID] = r
	return r
}

func (f *fakeStore) ListRecords(ctx context.Context, userID string) ([]domain.Record, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	listGate, listing := f.listGate, f.listing
	f.mu.Unlock()
	if listGate != nil {
		select {
		case listing <- struct{}{}:
		default:
		}
		select {
		case <-listGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list:"+userID)
	if f.failList != nil {
		return nil, f.failList
	}
	return f.userRecordsLocked(userID), nil
}

func (f *fakeStore) CreateRecord(ctx context.Context, userID string, p domain.Product, qty int) (domain.Record, error) {
	if err := f.wait(ctx); err != nil {
		return domain.Record{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("create:%s:%d", p.ID, qty))
	if f.failCreate != nil {
		return domain.Record{}, f.failCreate
	}
	f.seq++
	r := domain.Record{ID: fmt.Sprintf("rec-%d", f.seq), UserID: userID, ProductID: p.ID, Product: p, Quantity: qty}
	f.records[r.ID] = r
	return r, nil
}

func (f *fakeStore) UpdateRecordQuantity(ctx context.Context, id string, qty int) (domain.Record, error) {
	if err := f.wait(ctx); err != nil {
		return domain.Record{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("update:%s:%d", id, qty))
	if f.failUpdate != nil {
		return domain.Record{}, f.failUpdate
	}
	r, ok := f.records[id]
	if !ok {
		return domain.Record{}, ErrRecordNotFound
	}
	r.Quantity = qty
	f.records[id] = r
	return r, nil
}

func (f *fakeStore) DeleteRecord(ctx context.Context, id string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete:"+id)
	if f.failDelete != nil {
		return f.failDelete
	}
	if _, ok := f.records[id]; !ok {
		return ErrRecordNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeStore) DeleteAllRecords(ctx context.Context, userID string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "clear:"+userID)
	if f.failDelete != nil {
		return f.failDelete
	}
	for id, r := range f.records {
		if r.UserID == userID {
			delete(f.records, id)
		}
	}
	return nil
}

func (f *fakeStore) userRecordsLocked(userID string) []domain.Record {
	var out []domain.Record
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) userRecords(userID string) []domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userRecordsLocked(userID)
}

func (f *fakeStore) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) set(fn func(f *fakeStore)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

type fakeIdentity struct {
	mu        sync.Mutex
	userID    string
	listeners map[int]func(prev, next string)
	nextID    int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{listeners: make(map[int]func(prev, next string))}
}

func (f *fakeIdentity) CurrentUserID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userID
}

func (f *fakeIdentity) Subscribe(fn func(prev, next string)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeIdentity) switchTo(userID string) {
	f.mu.Lock()
	prev := f.userID
	f.userID = userID
	listeners := make([]func(prev, next string), 0, len(f.listeners))
	for _, fn := range f.listeners {
		listeners = append(listeners, fn)
	}
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, userID)
	}
}
