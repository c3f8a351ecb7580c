package pdc

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propnest/pdc-engine/pkg/db/models"
	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
)

// maxChainLength bounds replacement chain traversal. The pointers form a
// linked list by construction, so any walk longer than this means corrupted
// data rather than a legitimate chain.
const maxChainLength = 100

// Chain returns the full replacement chain containing the given cheque,
// ordered from the first instrument to the latest replacement.
func (s *service) Chain(ctx context.Context, id uuid.UUID) ([]models.PDC, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pdc id required")
	}

	node, err := s.chainNode(ctx, id)
	if err != nil {
		return nil, err
	}

	// walk back to the head of the chain
	back := map[uuid.UUID]struct{}{node.ID: {}}
	for node.OriginalChequeID != nil {
		if len(back) >= maxChainLength {
			return nil, chainCorrupt()
		}
		prev, err := s.chainNode(ctx, *node.OriginalChequeID)
		if err != nil {
			return nil, err
		}
		if _, seen := back[prev.ID]; seen {
			return nil, chainCorrupt()
		}
		back[prev.ID] = struct{}{}
		node = prev
	}

	// walk forward from the head collecting every link
	forward := map[uuid.UUID]struct{}{node.ID: {}}
	chain := []models.PDC{*node}
	for node.ReplacementChequeID != nil {
		if len(chain) >= maxChainLength {
			return nil, chainCorrupt()
		}
		next, err := s.chainNode(ctx, *node.ReplacementChequeID)
		if err != nil {
			return nil, err
		}
		if _, seen := forward[next.ID]; seen {
			return nil, chainCorrupt()
		}
		forward[next.ID] = struct{}{}
		chain = append(chain, *next)
		node = next
	}
	return chain, nil
}

func (s *service) chainNode(ctx context.Context, id uuid.UUID) (*models.PDC, error) {
	node, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cheque not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cheque")
	}
	return node, nil
}

func chainCorrupt() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "replacement chain is not a bounded linked list")
}
