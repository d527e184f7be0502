package order

import (
	"encoding/json"
	"time"
)

// Event kinds published on the order topic.
const (
	EventKindCreated   = "pedido.creado"
	EventKindFinalized = "pedido.finalizado"
)

// Envelope wraps published events so consumers can dispatch on kind.
type Envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// CreatedEvent is emitted when a new order is persisted.
type CreatedEvent struct {
	ID              int64     `json:"id"`
	Codigo          string    `json:"codigo"`
	ProveedorNombre string    `json:"proveedor_nombre"`
	Estado          string    `json:"estado"`
	Unidades        int       `json:"unidades_solicitadas"`
	CreatedAt       time.Time `json:"created_at"`
}

// Kind identifies the event on the wire.
func (CreatedEvent) Kind() string { return EventKindCreated }

// FinalizedEvent is emitted when an order transitions into a closed state.
type FinalizedEvent struct {
	ID             int64     `json:"id"`
	Codigo         string    `json:"codigo"`
	Estado         string    `json:"estado"`
	TotalFaltante  int       `json:"total_faltante"`
	TotalExcedente int       `json:"total_excedente"`
	FinalizedAt    time.Time `json:"finalized_at"`
}

// Kind identifies the event on the wire.
func (FinalizedEvent) Kind() string { return EventKindFinalized }

// FinalDetail is the structured payload stored on FINALIZADO* ledger events.
type FinalDetail struct {
	TotalFaltante  int               `json:"total_faltante"`
	TotalExcedente int               `json:"total_excedente"`
	Detalle        []FinalDetailLine `json:"detalle"`
}

// FinalDetailLine is the per-line reconciliation outcome.
type FinalDetailLine struct {
	ProductoID int64  `json:"producto_id"`
	Codigo     string `json:"codigo"`
	Solicitada int    `json:"solicitada"`
	Recibida   int    `json:"recibida"`
	Faltante   int    `json:"faltante"`
	Excedente  int    `json:"excedente"`
}
