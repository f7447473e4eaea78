package service

import "github.com/shopspring/decimal"

// tasaIVA is the Chilean value-added tax rate applied to all catalog prices.
var tasaIVA = decimal.NewFromFloat(1.19)

// DesglosarIVA decomposes an IVA-inclusive total (whole pesos) into its net
// and tax components. The net is rounded down so that neto + iva == total
// holds exactly; the rounding remainder lands on the IVA side.
func DesglosarIVA(total decimal.Decimal) (neto, iva decimal.Decimal) {
	neto = total.Div(tasaIVA).Floor()
	iva = total.Sub(neto)
	return neto, iva
}
