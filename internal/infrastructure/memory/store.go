// Package memory provee un almacén transaccional en memoria que implementa todos los puertos del ledger.
// Cada transacción trabaja sobre una copia del estado y la publica solo en el Commit; las transacciones
// se serializan con un mutex, equivalente a bloquear todas las filas candidatas.
package memory

import (
	"context"
	"sync"

	appinventory "github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

var _ appinventory.TxRunner = (*Store)(nil)

type levelKey struct {
	variantID  string
	locationID string
}

type state struct {
	lots         map[string]entity.Lot
	levels       map[levelKey]entity.InventoryLevel
	orderCosts   []entity.OrderItemCost
	variantCosts map[string]entity.VariantCost
}

func newState() *state {
	return &state{
		lots:         make(map[string]entity.Lot),
		levels:       make(map[levelKey]entity.InventoryLevel),
		variantCosts: make(map[string]entity.VariantCost),
	}
}

func (s *state) clone() *state {
	c := &state{
		lots:         make(map[string]entity.Lot, len(s.lots)),
		levels:       make(map[levelKey]entity.InventoryLevel, len(s.levels)),
		orderCosts:   append([]entity.OrderItemCost(nil), s.orderCosts...),
		variantCosts: make(map[string]entity.VariantCost, len(s.variantCosts)),
	}
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.levels {
		c.levels[k] = v
	}
	for k, v := range s.variantCosts {
		c.variantCosts[k] = v
	}
	return c
}

// Store almacén en memoria. El valor cero no es usable; construir con NewStore.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn sobre una copia del estado; si fn devuelve error la copia se descarta (Rollback).
func (s *Store) Run(ctx context.Context, fn func(repos appinventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	repos := appinventory.Repos{
		Lots:         &LotRepo{st: work},
		Levels:       &InventoryLevelRepo{st: work},
		OrderCosts:   &OrderItemCostRepo{st: work},
		VariantCosts: &VariantCostRepo{st: work},
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}
