package dto

import "time"

// StockResponse is one stock record joined with its product.
type StockResponse struct {
	ID             int64      `json:"id"`
	ProductoID     int64      `json:"producto_id"`
	InternalID     string     `json:"internal_id"`
	Descripcion    string     `json:"descripcion"`
	Editorial      *string    `json:"editorial,omitempty"`
	StockFisico    int        `json:"stock_fisico"`
	StockReservado int        `json:"stock_reservado"`
	Disponible     int        `json:"disponible"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	UpdatedBy      *string    `json:"updated_by,omitempty"`
}
