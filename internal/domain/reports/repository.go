package reports

import "context"

type LostRepository interface {
	// Create persiste el reporte y devuelve la copia con el ID asignado.
	Create(ctx context.Context, r LostReport) (LostReport, error)
	GetByID(ctx context.Context, id int64) (LostReport, error)
	Update(ctx context.Context, r LostReport) error
	// List devuelve los reportes que matchean el filtro, más nuevos primero.
	List(ctx context.Context, f Filter) ([]LostReport, error)
}

type FoundRepository interface {
	Create(ctx context.Context, r FoundReport) (FoundReport, error)
	List(ctx context.Context, f Filter) ([]FoundReport, error)
}
