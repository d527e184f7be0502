package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/prg-dinamics/dynedu/internal/database"
	"github.com/prg-dinamics/dynedu/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Catalog seeds example suppliers and products if they are missing. Sequence
// codes are fixed here so reseeding stays idempotent.
func (s *Seeder) Catalog(ctx context.Context) error {
	now := time.Now().UTC()

	suppliers := []entity.Supplier{
		{InternalID: "PRV0001", RazonSocial: "Distribuidora Escolar Andina SAC", RUC: "20504567891", ContactoNombre: "María Torres", ContactoCelular: "987654321", CreatedAt: now},
		{InternalID: "PRV0002", RazonSocial: "Ediciones Corefo SA", RUC: "20101234567", ContactoNombre: "Jorge Paredes", ContactoCelular: "912345678", CreatedAt: now},
	}
	for _, sample := range suppliers {
		supplier := sample
		_, err := s.db.NewInsert().Model(&supplier).
			On("CONFLICT (internal_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	editorial := "Santillana"
	products := []entity.Product{
		{InternalID: "PRO0001", Descripcion: "Matemática 5to grado - texto escolar", Editorial: &editorial, Stock: 0, CreatedAt: now},
		{InternalID: "PRO0002", Descripcion: "Comunicación 5to grado - cuaderno de trabajo", Editorial: &editorial, Stock: 0, CreatedAt: now},
		{InternalID: "PRO0003", Descripcion: "Cuaderno cuadriculado A4 x100 hojas", Stock: 0, CreatedAt: now},
	}
	for _, sample := range products {
		product := sample
		_, err := s.db.NewInsert().Model(&product).
			On("CONFLICT (internal_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded catalog",
			zap.Int("suppliers", len(suppliers)),
			zap.Int("products", len(products)),
		)
	}
	return nil
}
