package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// StockRecord tracks on-hand inventory for a product in stock_actual.
// One row per product; created lazily on first accrual.
type StockRecord struct {
	bun.BaseModel `bun:"table:stock_actual"`

	ID             int64     `bun:",pk,autoincrement"`
	ProductoID     int64     `bun:"producto_id"`
	StockFisico    int       `bun:"stock_fisico"`
	StockReservado int       `bun:"stock_reservado"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero"`
	UpdatedBy      string    `bun:"updated_by"`
}

// Disponible returns the available stock. It is derived, never stored.
func (s *StockRecord) Disponible() int {
	return s.StockFisico - s.StockReservado
}
