package dto

import "time"

// OrderResponse represents an order header as exposed via transport layers.
type OrderResponse struct {
	ID                  int64      `json:"id"`
	Codigo              string     `json:"codigo"`
	ProveedorID         int64      `json:"proveedor_id"`
	ProveedorNombre     string     `json:"proveedor_nombre"`
	FechaRegistro       time.Time  `json:"fecha_registro"`
	FechaEntrega        *time.Time `json:"fecha_entrega,omitempty"`
	Estado              string     `json:"estado"`
	UnidadesSolicitadas int        `json:"unidades_solicitadas"`
	UnidadesRecibidas   int        `json:"unidades_recibidas"`
	DocRef              *string    `json:"doc_ref,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at,omitempty"`
}

// OrderItemResponse is one order line with its derived deltas.
type OrderItemResponse struct {
	ID                  int64  `json:"id"`
	ProductoID          int64  `json:"producto_id"`
	ProductoDescripcion string `json:"producto_descripcion"`
	CantidadSolicitada  int    `json:"cantidad_solicitada"`
	CantidadRecibida    int    `json:"cantidad_recibida"`
	Faltante            int    `json:"faltante"`
	Excedente           int    `json:"excedente"`
}

// OrderDetailResponse is an order header together with its lines.
type OrderDetailResponse struct {
	OrderResponse
	Items []OrderItemResponse `json:"items"`
}
