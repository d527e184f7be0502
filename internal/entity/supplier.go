package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Supplier represents a row in the proveedores catalog.
type Supplier struct {
	bun.BaseModel `bun:"table:proveedores"`

	ID              int64     `bun:",pk,autoincrement"`
	InternalID      string    `bun:"internal_id"`
	RazonSocial     string    `bun:"razon_social"`
	RUC             string    `bun:"ruc"`
	ContactoNombre  string    `bun:"contacto_nombre"`
	ContactoCelular string    `bun:"contacto_celular"`
	ContactoCorreo  *string   `bun:"contacto_correo"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero"`
}
