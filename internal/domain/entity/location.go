package entity

import "time"

// Location representa una ubicación física de almacenamiento (bodega, estante, sucursal).
// Directorio externo de solo lectura para el motor.
type Location struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
