package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria classifies products by type (Decks, Sobres, Figuras, Tapetes…).
type Categoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"uniqueIndex;not null"`
	Descripcion *string
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }

// Subcategoria groups products by franchise (Pokemon, Digimon, Magic…)
// inside a categoria.
type Subcategoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoriaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre      string    `gorm:"uniqueIndex;not null"`
	Descripcion *string
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}

func (Subcategoria) TableName() string { return "subcategorias" }
