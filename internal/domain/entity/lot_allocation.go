package entity

// LotAllocation cantidad aplicada sobre un lote en una operación FIFO, al costo de ese lote.
type LotAllocation struct {
	LotID     string
	LotNumber string
	Quantity  int
	UnitCost  int64 // centavos
}

// TotalCost costo total de la porción asignada (centavos).
func (a LotAllocation) TotalCost() int64 {
	return int64(a.Quantity) * a.UnitCost
}
