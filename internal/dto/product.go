package dto

import "time"

// ProductResponse represents a product as exposed via transport layers.
// NroSerie carries the ISBN.
type ProductResponse struct {
	ID              int64     `json:"id"`
	InternalID      string    `json:"internal_id"`
	Descripcion     string    `json:"descripcion"`
	Editorial       *string   `json:"editorial,omitempty"`
	NroSerie        *string   `json:"nro_serie,omitempty"`
	Autor           *string   `json:"autor,omitempty"`
	AnioPublicacion *int      `json:"anio_publicacion,omitempty"`
	Stock           int       `json:"stock"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}
