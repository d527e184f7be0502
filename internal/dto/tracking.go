package dto

import "time"

// TrackingEventResponse is one ledger entry of an order timeline.
type TrackingEventResponse struct {
	ID         int64     `json:"id"`
	PedidoID   int64     `json:"pedido_id"`
	TipoEvento string    `json:"tipo_evento"`
	Detalle    string    `json:"detalle"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderTrackingSummaryResponse is one row of the tracking overview.
type OrderTrackingSummaryResponse struct {
	ID                int64      `json:"id"`
	Codigo            string     `json:"codigo"`
	ProveedorNombre   string     `json:"proveedor_nombre"`
	DocRef            *string    `json:"doc_ref,omitempty"`
	Estado            string     `json:"estado"`
	UltimoEvento      *string    `json:"ultimo_evento,omitempty"`
	UltimoEventoFecha *time.Time `json:"ultimo_evento_fecha,omitempty"`
}
