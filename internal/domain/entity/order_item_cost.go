package entity

import "time"

// OrderItemCost registro de costo de ventas: qué lote abasteció a qué ítem de orden y a qué costo.
// Es salida pura del ledger (auditoría de COGS); el núcleo nunca lo vuelve a leer.
type OrderItemCost struct {
	ID          string
	OrderID     string
	OrderItemID string
	LotID       string
	Quantity    int
	UnitCost    int64 // centavos
	TotalCost   int64 // Quantity * UnitCost
	CreatedAt   time.Time
}
