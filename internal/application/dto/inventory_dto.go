package dto

import (
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// CreateLotInput entrada para crear un lote (recepción, traslado o ajuste positivo).
// UnitCost en centavos; ReceivedAt vacío = momento de creación.
type CreateLotInput struct {
	VariantID  string
	LocationID string
	Quantity   int
	UnitCost   int64
	Provenance entity.Provenance
	ReceivedAt time.Time
}

// OrderItemRef referencia al ítem de orden al que se atribuye el costo de un pick.
type OrderItemRef struct {
	OrderID     string
	OrderItemID string
}

// AllocationResult desglose por lote de una operación FIFO.
// Applied puede ser menor que Requested: el llamador valida disponibilidad antes de invocar.
type AllocationResult struct {
	Requested   int                    `json:"requested"`
	Applied     int                    `json:"applied"`
	Allocations []entity.LotAllocation `json:"allocations"`
}

// Partial indica que no se pudo aplicar toda la cantidad solicitada.
func (r AllocationResult) Partial() bool {
	return r.Applied < r.Requested
}

// TotalCost suma del costo de todas las porciones (centavos).
func (r AllocationResult) TotalCost() int64 {
	var total int64
	for _, a := range r.Allocations {
		total += a.TotalCost()
	}
	return total
}

// TransferResult lotes consumidos en origen y lote creado en destino (nil si no se consumió nada).
type TransferResult struct {
	AllocationResult
	DestinationLot *entity.Lot `json:"destination_lot,omitempty"`
}

// VariantValuationDTO valorización de una variante.
type VariantValuationDTO struct {
	VariantID string `json:"variant_id"`
	Quantity  int64  `json:"qty"`
	AvgCost   int64  `json:"avg_cost"`    // centavos
	Value     int64  `json:"value_cents"` // centavos
}

// ValuationReport valorización del inventario activo por variante y total general.
type ValuationReport struct {
	Variants      []VariantValuationDTO `json:"variants"`
	TotalQuantity int64                 `json:"total_qty"`
	TotalValue    int64                 `json:"total_value_cents"`
}

// BootstrapResult conteo del bootstrap de lotes heredados.
type BootstrapResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
