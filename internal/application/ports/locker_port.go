package ports

import "context"

// Locker bloqueo distribuido por clave (venta, orden) previo a la transacción.
// Los bloqueos de fila de la base siguen siendo la autoridad; este puerto solo reduce contención.
type Locker interface {
	// Lock devuelve la función de liberación; domain.ErrConcurrencyConflict si no se obtuvo a tiempo.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// NoopLocker se usa cuando no hay Redis configurado.
type NoopLocker struct{}

// Lock no bloquea nada.
func (NoopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }
