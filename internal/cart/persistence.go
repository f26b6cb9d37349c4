package cart

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/identity"
)

// ErrPersistence marks a failed store read or write.
var ErrPersistence = errors.New("cart persistence failed")

// Catalog resolves product snapshots by id. Unknown ids are absent from the result.
type Catalog interface {
	Products(ctx context.Context, ids []string) (map[string]Product, error)
}

// LocalSlot is the single-slot device store used for anonymous carts.
type LocalSlot interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
	Delete(ctx context.Context) error
}

type MutationKind int

const (
	MutationAdd MutationKind = iota + 1
	MutationSet
	MutationRemove
	MutationClear
	MutationMoveSize
)

func (k MutationKind) String() string {
	switch k {
	case MutationAdd:
		return "add"
	case MutationSet:
		return "set"
	case MutationRemove:
		return "remove"
	case MutationClear:
		return "clear"
	case MutationMoveSize:
		return "move-size"
	default:
		return "unknown"
	}
}

// Mutation describes one engine operation for the persistence tier.
type Mutation struct {
	Kind      MutationKind
	ProductID string
	Size      string
	NewSize   string
	Quantity  int
}

// Persistence is the store variant selected by identity mode.
// Apply receives the post-mutation snapshot; variants use whichever form suits them.
type Persistence interface {
	Mode() identity.Mode
	Load(ctx context.Context) ([]Line, error)
	Apply(ctx context.Context, m Mutation, snapshot []Line) error
}

type localPersistence struct {
	slot LocalSlot
}

func (p *localPersistence) Mode() identity.Mode { return identity.ModeAnonymous }

func (p *localPersistence) Load(ctx context.Context) ([]Line, error) {
	if p.slot == nil {
		return []Line{}, nil
	}
	lines, err := p.slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return lines, nil
}

func (p *localPersistence) Apply(ctx context.Context, m Mutation, snapshot []Line) error {
	if p.slot == nil {
		return nil
	}
	var err error
	if m.Kind == MutationClear {
		err = p.slot.Delete(ctx)
	} else {
		err = p.slot.Save(ctx, snapshot)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

type remotePersistence struct {
	userID  string
	repo    Repository
	catalog Catalog
	logger  *log.Logger
}

func (p *remotePersistence) Mode() identity.Mode { return identity.ModeAuthenticated }

// Load joins persisted rows with catalog snapshots. Rows whose product cannot be
// resolved are dropped.
func (p *remotePersistence) Load(ctx context.Context) ([]Line, error) {
	rows, err := p.repo.List(ctx, p.userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if len(rows) == 0 {
		return []Line{}, nil
	}

	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if !seen[r.ProductID] {
			seen[r.ProductID] = true
			ids = append(ids, r.ProductID)
		}
	}

	products, err := p.catalog.Products(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup products: %v", ErrPersistence, err)
	}

	lines := make([]Line, 0, len(rows))
	for _, r := range rows {
		prod, ok := products[r.ProductID]
		if !ok {
			p.logger.Printf("dropping cart row %s: product %s not found", r.ID, r.ProductID)
			continue
		}
		lines = append(lines, Line{Product: prod, Quantity: r.Quantity, Size: r.Size})
	}
	return lines, nil
}

func (p *remotePersistence) Apply(ctx context.Context, m Mutation, _ []Line) error {
	var err error
	switch m.Kind {
	case MutationAdd:
		err = p.repo.AddQuantity(ctx, p.userID, m.ProductID, m.Size, m.Quantity)
	case MutationSet:
		err = p.repo.SetQuantity(ctx, p.userID, m.ProductID, m.Size, m.Quantity)
	case MutationRemove:
		err = p.repo.Delete(ctx, p.userID, m.ProductID, m.Size)
	case MutationClear:
		err = p.repo.DeleteAll(ctx, p.userID)
	case MutationMoveSize:
		err = p.repo.MoveSize(ctx, p.userID, m.ProductID, m.Size, m.NewSize, m.Quantity)
	default:
		return fmt.Errorf("unknown mutation %d", m.Kind)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPersistence, m.Kind, err)
	}
	return nil
}
