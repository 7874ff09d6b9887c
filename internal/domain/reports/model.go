package reports

import (
	"strings"
	"time"
)

// BreedOther es el valor centinela del select de raza: cuando el usuario lo
// elige, el texto libre pasa a ser la raza almacenada.
const BreedOther = "other"

// MaxPhotos limita la cantidad de fotos por reporte.
const MaxPhotos = 3

// Status filtra los reportes de mascota perdida por resolución.
type Status string

const (
	StatusLost  Status = "lost"
	StatusFound Status = "found"
)

// LostReport es un aviso de mascota perdida publicado por su dueño.
type LostReport struct {
	ID int64

	PetType  string
	Breed    string
	Color    string
	Gender   string
	Age      string
	Features string

	LostTime         time.Time
	LostLocationText string

	// Coordenadas opcionales e independientes; nil = sin pin en el mapa.
	Latitude  *float64
	Longitude *float64

	ContactInfo string

	// Nombres de archivo en el directorio de uploads, en orden de subida (0–3).
	Photos []string

	IsFound   bool
	FoundTime *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FoundReport es un aviso de mascota encontrada por un tercero.
type FoundReport struct {
	ID int64

	PetType  string
	Breed    string // opcional
	Color    string
	Gender   string
	Features string

	FoundTime         time.Time
	FoundLocationText string

	Latitude  *float64
	Longitude *float64

	ContactInfo string

	Photos []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter son los criterios del listado; los vacíos no restringen y los
// presentes se combinan con AND.
type Filter struct {
	PetType  string // match exacto
	Location string // substring case-insensitive sobre el texto de ubicación
	Color    string // substring case-insensitive
	Status   Status // solo aplica a reportes perdidos
}

// ResolveBreed colapsa la elección de raza a un solo valor almacenado.
// "other" exige el texto libre; cualquier otro valor se usa tal cual.
func ResolveBreed(selected, other string) (string, error) {
	selected = strings.TrimSpace(selected)
	other = strings.TrimSpace(other)

	if selected != BreedOther {
		return selected, nil
	}
	if other == "" {
		return "", ErrOtherBreedRequired
	}
	return other, nil
}
