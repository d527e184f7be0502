package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Product represents a row in the productos catalog.
// NroSerie carries the ISBN; the column keeps its historical name.
type Product struct {
	bun.BaseModel `bun:"table:productos"`

	ID              int64     `bun:",pk,autoincrement"`
	InternalID      string    `bun:"internal_id"`
	Descripcion     string    `bun:"descripcion"`
	Editorial       *string   `bun:"editorial"`
	NroSerie        *string   `bun:"nro_serie"`
	Autor           *string   `bun:"autor"`
	AnioPublicacion *int      `bun:"anio_publicacion"`
	Stock           int       `bun:"stock"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero"`
}
