package reports

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("report not found")
	ErrOtherBreedRequired = errors.New("other breed text required")
	ErrTooManyPhotos      = errors.New("too many photos")
)

type Service struct {
	lost  LostRepository
	found FoundRepository
	now   func() time.Time
}

func NewService(lost LostRepository, found FoundRepository) *Service {
	return &Service{
		lost:  lost,
		found: found,
		now:   time.Now,
	}
}

type CreateLostInput struct {
	PetType    string
	Breed      string
	OtherBreed string
	Color      string
	Gender     string
	Age        string
	Features   string

	LostTime         time.Time
	LostLocationText string

	Latitude  *float64
	Longitude *float64

	ContactInfo string
	Photos      []string
}

func (s *Service) CreateLost(ctx context.Context, in CreateLostInput) (LostReport, error) {
	breed, err := ResolveBreed(in.Breed, in.OtherBreed)
	if err != nil {
		return LostReport{}, err
	}

	for _, f := range []string{in.PetType, breed, in.Color, in.Gender, in.Features, in.LostLocationText, in.ContactInfo} {
		if strings.TrimSpace(f) == "" {
			return LostReport{}, ErrInvalidInput
		}
	}
	if in.LostTime.IsZero() {
		return LostReport{}, ErrInvalidInput
	}
	if len(in.Photos) > MaxPhotos {
		return LostReport{}, ErrTooManyPhotos
	}

	now := s.now()
	r := LostReport{
		PetType:          strings.TrimSpace(in.PetType),
		Breed:            breed,
		Color:            strings.TrimSpace(in.Color),
		Gender:           strings.TrimSpace(in.Gender),
		Age:              strings.TrimSpace(in.Age),
		Features:         strings.TrimSpace(in.Features),
		LostTime:         in.LostTime,
		LostLocationText: strings.TrimSpace(in.LostLocationText),
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		ContactInfo:      strings.TrimSpace(in.ContactInfo),
		Photos:           append([]string(nil), in.Photos...),
		IsFound:          false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	return s.lost.Create(ctx, r)
}

type CreateFoundInput struct {
	PetType    string
	Breed      string // opcional
	OtherBreed string
	Color      string
	Gender     string
	Features   string

	FoundTime         time.Time
	FoundLocationText string

	Latitude  *float64
	Longitude *float64

	ContactInfo string
	Photos      []string
}

func (s *Service) CreateFound(ctx context.Context, in CreateFoundInput) (FoundReport, error) {
	// la raza es opcional acá, pero si eligieron "other" el texto sigue
	// siendo obligatorio
	breed := ""
	if strings.TrimSpace(in.Breed) != "" {
		b, err := ResolveBreed(in.Breed, in.OtherBreed)
		if err != nil {
			return FoundReport{}, err
		}
		breed = b
	}

	for _, f := range []string{in.PetType, in.Color, in.Gender, in.Features, in.FoundLocationText, in.ContactInfo} {
		if strings.TrimSpace(f) == "" {
			return FoundReport{}, ErrInvalidInput
		}
	}
	if in.FoundTime.IsZero() {
		return FoundReport{}, ErrInvalidInput
	}
	if len(in.Photos) > MaxPhotos {
		return FoundReport{}, ErrTooManyPhotos
	}

	now := s.now()
	r := FoundReport{
		PetType:           strings.TrimSpace(in.PetType),
		Breed:             breed,
		Color:             strings.TrimSpace(in.Color),
		Gender:            strings.TrimSpace(in.Gender),
		Features:          strings.TrimSpace(in.Features),
		FoundTime:         in.FoundTime,
		FoundLocationText: strings.TrimSpace(in.FoundLocationText),
		Latitude:          in.Latitude,
		Longitude:         in.Longitude,
		ContactInfo:       strings.TrimSpace(in.ContactInfo),
		Photos:            append([]string(nil), in.Photos...),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	return s.found.Create(ctx, r)
}

func (s *Service) ListLost(ctx context.Context, f Filter) ([]LostReport, error) {
	return s.lost.List(ctx, normalizeFilter(f))
}

func (s *Service) ListFound(ctx context.Context, f Filter) ([]FoundReport, error) {
	return s.found.List(ctx, normalizeFilter(f))
}

// MarkFound resuelve un reporte perdido. La transición corre una sola vez:
// si ya estaba resuelto no muta nada y devuelve changed=false para que el
// handler avise distinto.
func (s *Service) MarkFound(ctx context.Context, id int64) (LostReport, bool, error) {
	r, err := s.lost.GetByID(ctx, id)
	if err != nil {
		return LostReport{}, false, err
	}
	if r.IsFound {
		return r, false, nil
	}

	now := s.now()
	r.IsFound = true
	r.FoundTime = &now
	r.UpdatedAt = now

	if err := s.lost.Update(ctx, r); err != nil {
		return LostReport{}, false, err
	}
	return r, true, nil
}

func normalizeFilter(f Filter) Filter {
	f.PetType = strings.TrimSpace(f.PetType)
	f.Location = strings.TrimSpace(f.Location)
	f.Color = strings.TrimSpace(f.Color)
	switch f.Status {
	case StatusLost, StatusFound:
	default:
		// status vacío o inválido no filtra
		f.Status = ""
	}
	return f
}
