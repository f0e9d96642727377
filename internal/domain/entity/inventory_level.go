package entity

import "time"

// InventoryLevel contador agregado on-hand/reserved/picked por (variante, ubicación).
// Lo mantiene un colaborador externo; el ledger solo lo lee durante el bootstrap de lotes heredados.
type InventoryLevel struct {
	VariantID  string
	LocationID string
	OnHand     int
	Reserved   int
	Picked     int
	UpdatedAt  time.Time
}
