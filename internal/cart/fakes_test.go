package cart

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type memSlot struct {
	mu      sync.Mutex
	lines   []Line
	present bool
	saves   int
}

func (s *memSlot) Load(context.Context) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines), nil
}

func (s *memSlot) Save(_ context.Context, lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = cloneLines(lines)
	s.present = true
	s.saves++
	return nil
}

func (s *memSlot) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.present = false
	return nil
}

// memRepo is an in-memory Repository. writeErr fails every write; listGate blocks List.
type memRepo struct {
	mu       sync.Mutex
	rows     map[string][]Row
	calls    []string
	writeErr error
	listErr  error
	listGate chan struct{}
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string][]Row{}}
}

func (r *memRepo) seed(userID string, rows ...Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[userID] = append(r.rows[userID], rows...)
}

func (r *memRepo) snapshot(userID string) []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Row(nil), r.rows[userID]...)
}

func (r *memRepo) record(call string) error {
	r.calls = append(r.calls, call)
	return r.writeErr
}

func (r *memRepo) List(_ context.Context, userID string) ([]Row, error) {
	if r.listGate != nil {
		<-r.listGate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]Row{}, r.rows[userID]...), nil
}

func (r *memRepo) add(userID, productID, size string, quantity int, overwrite bool) {
	rows := r.rows[userID]
	for i := range rows {
		if rows[i].ProductID == productID && rows[i].Size == size {
			if overwrite {
				rows[i].Quantity = quantity
			} else {
				rows[i].Quantity += quantity
			}
			return
		}
	}
	r.rows[userID] = append(rows, Row{ID: fmt.Sprintf("row-%d", len(rows)+1), ProductID: productID, Quantity: quantity, Size: size})
}

func (r *memRepo) del(userID, productID, size string) {
	var kept []Row
	for _, row := range r.rows[userID] {
		if row.ProductID != productID || row.Size != size {
			kept = append(kept, row)
		}
	}
	r.rows[userID] = kept
}

func (r *memRepo) AddQuantity(_ context.Context, userID, productID, size string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("add"); err != nil {
		return err
	}
	r.add(userID, productID, size, quantity, false)
	return nil
}

func (r *memRepo) SetQuantity(_ context.Context, userID, productID, size string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("set"); err != nil {
		return err
	}
	r.add(userID, productID, size, quantity, true)
	return nil
}

func (r *memRepo) Delete(_ context.Context, userID, productID, size string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("delete"); err != nil {
		return err
	}
	r.del(userID, productID, size)
	return nil
}

func (r *memRepo) DeleteAll(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("delete-all"); err != nil {
		return err
	}
	delete(r.rows, userID)
	return nil
}

func (r *memRepo) MoveSize(_ context.Context, userID, productID, fromSize, toSize string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("move-size"); err != nil {
		return err
	}
	r.del(userID, productID, fromSize)
	r.add(userID, productID, toSize, quantity, false)
	return nil
}

func (r *memRepo) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type mapCatalog map[string]Product

func (c mapCatalog) Products(_ context.Context, ids []string) (map[string]Product, error) {
	out := map[string]Product{}
	for _, id := range ids {
		if p, ok := c[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeSubscriber struct {
	mu   sync.Mutex
	subs map[string]func()
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{subs: map[string]func(){}}
}

func (s *fakeSubscriber) Subscribe(_ context.Context, userID string, onChange func()) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[userID] = onChange
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, userID)
	}, nil
}

func (s *fakeSubscriber) push(userID string) bool {
	s.mu.Lock()
	fn, ok := s.subs[userID]
	s.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

func (s *fakeSubscriber) active(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[userID]
	return ok
}

type fakeNotifier struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (n *fakeNotifier) NotifyCartChanged(_ context.Context, userID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
	return n.err
}
