package model

// Rol is a closed role type. Keeping the capability checks here — instead of
// comparing role strings inside handlers — gives a single point of truth for
// the access policy.
type Rol string

const (
	RolAdministrador Rol = "administrador"
	RolVendedor      Rol = "vendedor"
	RolCliente       Rol = "cliente"
)

// Valido reports whether r is one of the three known roles.
func (r Rol) Valido() bool {
	switch r {
	case RolAdministrador, RolVendedor, RolCliente:
		return true
	}
	return false
}

// EsStaff reports whether r can access the internal inventory/POS sections.
func (r Rol) EsStaff() bool { return r == RolAdministrador || r == RolVendedor }

// PuedeVender reports whether r may register POS sales.
func (r Rol) PuedeVender() bool { return r.EsStaff() }

// PuedeAjustarInventario reports whether r may issue absolute stock
// adjustments (AJUSTE). Vendedores may receive and dispatch stock but not
// rewrite the counter.
func (r Rol) PuedeAjustarInventario() bool { return r == RolAdministrador }
