package infra

import (
	"fmt"

	"github.com/H-Riv/mundo-cartas/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all tables, then applies idempotent SQL patches that GORM cannot
// express (sequences for SKU/folio generation).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Categoria{},
		&model.Subcategoria{},
		&model.Producto{},
		&model.MovimientoStock{},
		&model.Usuario{},
		&model.Carrito{},
		&model.ItemCarrito{},
		&model.Pedido{},
		&model.DetallePedido{},
		&model.Venta{},
		&model.DetalleVenta{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle:
// the counters behind MC-NNNN SKUs and V-NNNN folios live in Postgres
// sequences so concurrent creates can never mint the same identifier.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE SEQUENCE IF NOT EXISTS productos_sku_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS ventas_folio_seq START 1`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql, err)
		}
	}
	return nil
}
