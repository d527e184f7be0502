package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order status values. PARCIAL and COMPLETO mark a closed order once the
// order has been finalized; PARCIAL may also appear as a provisional working
// status before finalization.
const (
	EstadoPendiente = "PENDIENTE"
	EstadoParcial   = "PARCIAL"
	EstadoCompleto  = "COMPLETO"
)

// Order represents a purchase-order header in the pedidos table.
// ProveedorNombre is a value snapshot taken at creation time; later supplier
// renames must not rewrite order history.
type Order struct {
	bun.BaseModel `bun:"table:pedidos"`

	ID                  int64      `bun:",pk,autoincrement"`
	Codigo              string     `bun:"codigo"`
	ProveedorID         int64      `bun:"proveedor_id"`
	ProveedorNombre     string     `bun:"proveedor_nombre"`
	FechaRegistro       time.Time  `bun:"fecha_registro"`
	FechaEntrega        *time.Time `bun:"fecha_entrega"`
	Estado              string     `bun:"estado"`
	UnidadesSolicitadas int        `bun:"unidades_solicitadas"`
	UnidadesRecibidas   int        `bun:"unidades_recibidas"`
	DocRef              *string    `bun:"doc_ref"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time  `bun:"updated_at,nullzero"`
}

// Closed reports whether the order has reached a terminal state.
// Closed orders are immutable and cannot be deleted.
func (o *Order) Closed() bool {
	return o.Estado == EstadoParcial || o.Estado == EstadoCompleto
}

// OrderItem is one product/quantity line inside an order.
// ProductoDescripcion is snapshotted from the product at line creation.
type OrderItem struct {
	bun.BaseModel `bun:"table:pedido_items"`

	ID                  int64  `bun:",pk,autoincrement"`
	PedidoID            int64  `bun:"pedido_id"`
	ProductoID          int64  `bun:"producto_id"`
	ProductoDescripcion string `bun:"producto_descripcion"`
	CantidadSolicitada  int    `bun:"cantidad_solicitada"`
	CantidadRecibida    int    `bun:"cantidad_recibida"`
}
