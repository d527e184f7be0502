package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Tracking event kinds. FINALIZADO closes an order with no deltas;
// FINALIZADO_CON_FALTANTES closes it with shortages or surpluses.
const (
	EventoNota               = "NOTA"
	EventoActualizarPedido   = "ACTUALIZAR_PEDIDO"
	EventoFinalizado         = "FINALIZADO"
	EventoFinalizadoFaltante = "FINALIZADO_CON_FALTANTES"
)

// TrackingEvent is one entry in an order's append-only event ledger.
// Rows are never updated or deleted.
type TrackingEvent struct {
	bun.BaseModel `bun:"table:pedido_tracking"`

	ID         int64     `bun:",pk,autoincrement"`
	PedidoID   int64     `bun:"pedido_id"`
	TipoEvento string    `bun:"tipo_evento"`
	Detalle    string    `bun:"detalle"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// FinalEvent reports whether the event records an order finalization.
func (e *TrackingEvent) FinalEvent() bool {
	return e.TipoEvento == EventoFinalizado || e.TipoEvento == EventoFinalizadoFaltante
}
