package inventory

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	lotNumberPrefix = "LOT-"
	lotDateLayout   = "20060102"
)

// FormatLotNumber arma el número legible LOT-YYYYMMDD-NNN (secuencia con al menos 3 dígitos).
func FormatLotNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s%s-%03d", lotNumberPrefix, day.Format(lotDateLayout), seq)
}

// LotNumberDayPrefix prefijo común de todos los lotes de un día (LOT-YYYYMMDD-).
func LotNumberDayPrefix(day time.Time) string {
	return lotNumberPrefix + day.Format(lotDateLayout) + "-"
}

// ParseLotNumber extrae la fecha y la secuencia de un número de lote.
func ParseLotNumber(lotNumber string) (time.Time, int, error) {
	rest, ok := strings.CutPrefix(lotNumber, lotNumberPrefix)
	if !ok {
		return time.Time{}, 0, fmt.Errorf("número de lote sin prefijo: %q", lotNumber)
	}
	datePart, seqPart, ok := strings.Cut(rest, "-")
	if !ok {
		return time.Time{}, 0, fmt.Errorf("número de lote sin secuencia: %q", lotNumber)
	}
	day, err := time.Parse(lotDateLayout, datePart)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("fecha de lote inválida %q: %w", lotNumber, err)
	}
	seq, err := strconv.Atoi(seqPart)
	if err != nil || seq <= 0 {
		return time.Time{}, 0, fmt.Errorf("secuencia de lote inválida: %q", lotNumber)
	}
	return day, seq, nil
}

// CompareLotNumbers ordena por día y luego por secuencia numérica (LOT-20240110-999 antes que
// LOT-20240110-1000). Los números que no se pueden interpretar van al final, comparados como texto.
func CompareLotNumbers(a, b string) int {
	dayA, seqA, errA := ParseLotNumber(a)
	dayB, seqB, errB := ParseLotNumber(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	if c := dayA.Compare(dayB); c != 0 {
		return c
	}
	return cmp.Compare(seqA, seqB)
}
