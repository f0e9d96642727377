package entity

import "time"

// LotStatus estado del ciclo de vida de un lote.
type LotStatus string

const (
	LotStatusActive   LotStatus = "active"
	LotStatusDepleted LotStatus = "depleted"
)

// Provenance referencias opcionales de origen del lote (recepción, orden de compra, envío entrante).
type Provenance struct {
	ReceivingRef       string
	PurchaseOrderRef   string
	InboundShipmentRef string
	Notes              string
}

// Lot capa de costo y cantidad de una variante en una ubicación.
// UnitCost (centavos) es inmutable; los cambios de costo se expresan como lotes nuevos.
//
// Invariantes: 0 <= Reserved <= OnHand; OnHand, Reserved, Picked >= 0.
// OnHand excluye las unidades ya pickeadas (Picked se lleva aparte hasta el despacho).
type Lot struct {
	ID         string
	LotNumber  string // LOT-YYYYMMDD-NNN
	VariantID  string
	LocationID string
	UnitCost   int64 // centavos
	OnHand     int
	Reserved   int
	Picked     int
	Status     LotStatus
	Provenance
	ReceivedAt time.Time // clave de orden FIFO
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Available unidades en estante sin reservar.
func (l *Lot) Available() int {
	return l.OnHand - l.Reserved
}

// IsActive indica si el lote participa en la selección FIFO.
func (l *Lot) IsActive() bool {
	return l.Status == LotStatusActive
}

// Reserve aparta hasta n unidades disponibles. Devuelve lo efectivamente reservado.
func (l *Lot) Reserve(n int) int {
	take := minQty(n, l.Available())
	l.Reserved += take
	return take
}

// Release libera hasta n unidades reservadas.
func (l *Lot) Release(n int) int {
	take := minQty(n, l.Reserved)
	l.Reserved -= take
	l.refreshStatus()
	return take
}

// Pick saca del estante hasta n unidades, consumiendo primero la reserva propia del lote.
func (l *Lot) Pick(n int) int {
	take := minQty(n, l.OnHand)
	l.OnHand -= take
	l.Reserved -= minQty(l.Reserved, take)
	l.Picked += take
	l.refreshStatus()
	return take
}

// ShipPicked despacha hasta n unidades ya pickeadas.
func (l *Lot) ShipPicked(n int) int {
	take := minQty(n, l.Picked)
	l.Picked -= take
	l.refreshStatus()
	return take
}

// ShipOnHand despacha directo desde estante (sin pick previo), liberando la reserva equivalente.
func (l *Lot) ShipOnHand(n int) int {
	take := minQty(n, l.OnHand)
	l.OnHand -= take
	l.Reserved -= minQty(l.Reserved, take)
	l.refreshStatus()
	return take
}

// Deduct descuenta hasta n unidades disponibles (ajuste negativo o salida por traslado).
// Nunca toca unidades reservadas.
func (l *Lot) Deduct(n int) int {
	take := minQty(n, l.Available())
	l.OnHand -= take
	l.refreshStatus()
	return take
}

// IsEmpty indica que los tres contadores están en cero.
func (l *Lot) IsEmpty() bool {
	return l.OnHand == 0 && l.Reserved == 0 && l.Picked == 0
}

func (l *Lot) refreshStatus() {
	if l.IsEmpty() {
		l.Status = LotStatusDepleted
	}
}

func minQty(a, b int) int {
	if b < a {
		a = b
	}
	if a < 0 {
		return 0
	}
	return a
}
