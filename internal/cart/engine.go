package cart

import (
	"context"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/identity"
)

// Engine holds the in-memory cart for one identity at a time. Reads never touch a store.
// Mutations update memory first and then persist: synchronously to the local slot for
// anonymous shoppers, in the background to the remote store for signed-in ones. A failed
// remote write or a change notification reloads the whole cart from the remote store.
type Engine struct {
	mu          sync.Mutex
	ident       identity.Identity
	lines       []Line
	loading     bool
	generation  uint64
	reloadSeq   uint64
	appliedSeq  uint64
	persistence Persistence
	unsubscribe func()

	local   LocalSlot
	remote  Repository
	catalog Catalog
	changes ChangeSubscriber
	logger  *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	inflight inflight
}

// NewEngine returns an engine bound to the anonymous identity with an empty cart.
// Call SetIdentity to load.
func NewEngine(local LocalSlot, remote Repository, catalog Catalog, changes ChangeSubscriber, logger *log.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		ident:   identity.Anonymous(),
		lines:   []Line{},
		local:   local,
		remote:  remote,
		catalog: catalog,
		changes: changes,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	e.inflight.idle = sync.NewCond(&e.inflight.mu)
	e.persistence = e.persistenceFor(e.ident)
	return e
}

func (e *Engine) persistenceFor(id identity.Identity) Persistence {
	if id.IsAuthenticated() && e.remote != nil {
		return &remotePersistence{userID: id.ID, repo: e.remote, catalog: e.catalog, logger: e.logger}
	}
	return &localPersistence{slot: e.local}
}

// SetIdentity discards the in-memory cart and loads the one belonging to id.
// Anonymous carts load before SetIdentity returns; remote carts load in the background
// with Loading reporting true until the first load lands.
func (e *Engine) SetIdentity(ctx context.Context, id identity.Identity) {
	if !id.IsAuthenticated() {
		id = identity.Anonymous()
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	e.ident = id
	e.lines = []Line{}
	e.loading = true
	e.persistence = e.persistenceFor(id)
	authenticated := e.persistence.Mode() == identity.ModeAuthenticated
	e.mu.Unlock()

	if !authenticated {
		e.reload(ctx, gen)
		return
	}

	if e.changes != nil {
		unsubscribe, err := e.changes.Subscribe(e.ctx, id.ID, func() { e.scheduleReload(gen) })
		if err != nil {
			e.logger.Printf("subscribe to cart changes for %s: %v", id.ID, err)
		} else {
			e.mu.Lock()
			if gen == e.generation {
				e.unsubscribe = unsubscribe
				unsubscribe = nil
			}
			e.mu.Unlock()
			if unsubscribe != nil {
				unsubscribe()
			}
		}
	}

	e.scheduleReload(gen)
}

// Follow applies every identity received on ids until the channel closes or ctx ends.
func (e *Engine) Follow(ctx context.Context, ids <-chan identity.Identity) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-ids:
			if !ok {
				return
			}
			e.SetIdentity(ctx, id)
		}
	}
}

// AddItem merges quantity of product at size into the cart. Non-positive quantities are ignored.
func (e *Engine) AddItem(ctx context.Context, product Product, quantity int, size string) {
	if quantity <= 0 {
		return
	}
	e.mutate(ctx, Mutation{Kind: MutationAdd, ProductID: product.ID, Size: size, Quantity: quantity}, func(lines []Line) ([]Line, bool) {
		return addLine(lines, product, quantity, size), true
	})
}

func (e *Engine) RemoveItem(ctx context.Context, productID, size string) {
	e.mutate(ctx, Mutation{Kind: MutationRemove, ProductID: productID, Size: size}, func(lines []Line) ([]Line, bool) {
		return removeLine(lines, Key{ProductID: productID, Size: size}), true
	})
}

// SetQuantity overwrites the quantity of an existing line. Zero or less removes it.
func (e *Engine) SetQuantity(ctx context.Context, productID string, quantity int, size string) {
	if quantity <= 0 {
		e.RemoveItem(ctx, productID, size)
		return
	}
	k := Key{ProductID: productID, Size: size}
	e.mutate(ctx, Mutation{Kind: MutationSet, ProductID: productID, Size: size, Quantity: quantity}, func(lines []Line) ([]Line, bool) {
		if indexOf(lines, k) < 0 {
			return lines, false
		}
		return setLineQuantity(lines, k, quantity), true
	})
}

// ChangeSize moves a line to newSize keeping its quantity. If a line for newSize already
// exists the quantities merge.
func (e *Engine) ChangeSize(ctx context.Context, productID, oldSize, newSize string) {
	if oldSize == newSize {
		return
	}
	m := Mutation{Kind: MutationMoveSize, ProductID: productID, Size: oldSize, NewSize: newSize}
	e.mutate(ctx, m, func(lines []Line) ([]Line, bool) {
		i := indexOf(lines, Key{ProductID: productID, Size: oldSize})
		if i < 0 {
			return lines, false
		}
		moved := lines[i]
		lines = removeLine(lines, moved.Key())
		return addLine(lines, moved.Product, moved.Quantity, newSize), true
	})
}

func (e *Engine) Clear(ctx context.Context) {
	e.mutate(ctx, Mutation{Kind: MutationClear}, func([]Line) ([]Line, bool) {
		return []Line{}, true
	})
}

// mutate applies fn to memory and hands the result to the active persistence.
func (e *Engine) mutate(ctx context.Context, m Mutation, fn func([]Line) ([]Line, bool)) {
	e.mu.Lock()
	if m.Kind == MutationMoveSize {
		if i := indexOf(e.lines, Key{ProductID: m.ProductID, Size: m.Size}); i >= 0 {
			m.Quantity = e.lines[i].Quantity
		}
	}
	lines, changed := fn(e.lines)
	if !changed {
		e.mu.Unlock()
		return
	}
	e.lines = lines
	snapshot := cloneLines(lines)
	p := e.persistence
	gen := e.generation
	e.mu.Unlock()

	if p.Mode() == identity.ModeAnonymous {
		if err := p.Apply(ctx, m, snapshot); err != nil {
			e.logger.Printf("persist local cart (%s): %v", m.Kind, err)
		}
		return
	}

	e.inflight.add()
	go func() {
		defer e.inflight.done()
		if err := p.Apply(e.ctx, m, snapshot); err != nil {
			e.logger.Printf("persist remote cart (%s): %v; reloading", m.Kind, err)
			e.reload(e.ctx, gen)
		}
	}()
}

func (e *Engine) scheduleReload(gen uint64) {
	e.inflight.add()
	go func() {
		defer e.inflight.done()
		e.reload(e.ctx, gen)
	}()
}

// reload replaces memory with the store contents unless the identity moved on or a
// later reload already landed.
func (e *Engine) reload(ctx context.Context, gen uint64) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.reloadSeq++
	seq := e.reloadSeq
	p := e.persistence
	e.mu.Unlock()

	lines, err := p.Load(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || seq < e.appliedSeq {
		return
	}
	e.appliedSeq = seq
	e.loading = false
	if err != nil {
		e.logger.Printf("load cart for %s: %v", e.ident.Mode, err)
		return
	}
	e.lines = cloneLines(lines)
}

// Lines returns a copy of the current cart.
func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneLines(e.lines)
}

func (e *Engine) TotalPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TotalPrice(e.lines)
}

func (e *Engine) TotalItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TotalItemCount(e.lines)
}

func (e *Engine) Identity() identity.Identity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ident
}

func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Wait blocks until background writes and reloads have finished.
func (e *Engine) Wait() {
	e.inflight.wait()
}

// Close drops the change subscription and waits for background work.
func (e *Engine) Close() {
	e.mu.Lock()
	e.generation++
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	e.mu.Unlock()

	e.cancel()
	e.inflight.wait()
}

type inflight struct {
	mu   sync.Mutex
	n    int
	idle *sync.Cond
}

func (f *inflight) add() {
	f.mu.Lock()
	f.n++
	f.mu.Unlock()
}

func (f *inflight) done() {
	f.mu.Lock()
	f.n--
	if f.n == 0 {
		f.idle.Broadcast()
	}
	f.mu.Unlock()
}

func (f *inflight) wait() {
	f.mu.Lock()
	for f.n > 0 {
		f.idle.Wait()
	}
	f.mu.Unlock()
}
