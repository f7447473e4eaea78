package service_test

import (
	"testing"

	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDesglosarIVA(t *testing.T) {
	casos := []struct {
		total int64
		neto  int64
		iva   int64
	}{
		{1190, 1000, 190},
		{1000, 840, 160},
		{5990, 5033, 957},
		{1, 0, 1},
		{0, 0, 0},
	}
	for _, c := range casos {
		neto, iva := service.DesglosarIVA(decimal.NewFromInt(c.total))
		assert.Equal(t, c.neto, neto.IntPart(), "neto de %d", c.total)
		assert.Equal(t, c.iva, iva.IntPart(), "iva de %d", c.total)
	}
}

// The decomposition must never lose a peso: neto + iva == total, whatever
// the rounding.
func TestDesglosarIVA_SumaExacta(t *testing.T) {
	for total := int64(1); total < 3000; total += 7 {
		d := decimal.NewFromInt(total)
		neto, iva := service.DesglosarIVA(d)
		assert.True(t, neto.Add(iva).Equal(d), "total %d: neto %s + iva %s", total, neto, iva)
		assert.True(t, iva.GreaterThanOrEqual(decimal.Zero))
	}
}
