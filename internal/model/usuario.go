package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario stores system users. Rol governs page-level access: clientes use
// the catalog/cart, vendedores operate inventory and POS, administradores
// additionally edit products and users.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          Rol    `gorm:"type:varchar(20);not null;default:'cliente'"`
	Telefono     *string
	Direccion    *string
	Activo       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
