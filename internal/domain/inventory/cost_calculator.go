package inventory

import "github.com/shopspring/decimal"

// CostLayer cantidad y costo unitario (centavos) de una capa de inventario.
type CostLayer struct {
	Quantity int64
	UnitCost int64
}

// WeightedAverageCents implementa el costo promedio ponderado por cantidad (servicio de dominio).
// Costo = round(Σ(Cantidad * CostoUnitario) / ΣCantidad). ok=false si no hay cantidad.
func WeightedAverageCents(layers []CostLayer) (avg int64, ok bool) {
	var qty, value int64
	for _, l := range layers {
		if l.Quantity <= 0 {
			continue
		}
		qty += l.Quantity
		value += l.Quantity * l.UnitCost
	}
	if qty == 0 {
		return 0, false
	}
	return RoundCents(value, qty), true
}

// RoundCents divide value/qty y redondea al centavo más cercano (mitad hacia arriba).
func RoundCents(value, qty int64) int64 {
	if qty == 0 {
		return 0
	}
	return decimal.NewFromInt(value).
		Div(decimal.NewFromInt(qty)).
		Round(0).
		IntPart()
}
