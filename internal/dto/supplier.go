package dto

import "time"

// SupplierResponse represents a supplier as exposed via transport layers.
type SupplierResponse struct {
	ID              int64     `json:"id"`
	InternalID      string    `json:"internal_id"`
	RazonSocial     string    `json:"razon_social"`
	RUC             string    `json:"ruc"`
	ContactoNombre  string    `json:"contacto_nombre"`
	ContactoCelular string    `json:"contacto_celular"`
	ContactoCorreo  *string   `json:"contacto_correo,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}
