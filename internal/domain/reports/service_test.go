package reports

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type testLostRepo struct {
	seq  int64
	byID map[int64]LostReport
}

func newTestLostRepo() *testLostRepo {
	return &testLostRepo{byID: map[int64]LostReport{}}
}

func (r *testLostRepo) Create(ctx context.Context, rep LostReport) (LostReport, error) {
	r.seq++
	rep.ID = r.seq
	r.byID[rep.ID] = rep
	return rep, nil
}

func (r *testLostRepo) GetByID(ctx context.Context, id int64) (LostReport, error) {
	rep, ok := r.byID[id]
	if !ok {
		return LostReport{}, ErrNotFound
	}
	return rep, nil
}

func (r *testLostRepo) Update(ctx context.Context, rep LostReport) error {
	if _, ok := r.byID[rep.ID]; !ok {
		return ErrNotFound
	}
	r.byID[rep.ID] = rep
	return nil
}

func (r *testLostRepo) List(ctx context.Context, f Filter) ([]LostReport, error) {
	out := make([]LostReport, 0)
	for _, rep := range r.byID {
		if f.PetType != "" && rep.PetType != f.PetType {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(rep.LostLocationText), strings.ToLower(f.Location)) {
			continue
		}
		if f.Color != "" && !strings.Contains(strings.ToLower(rep.Color), strings.ToLower(f.Color)) {
			continue
		}
		if f.Status == StatusLost && rep.IsFound {
			continue
		}
		if f.Status == StatusFound && !rep.IsFound {
			continue
		}
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type testFoundRepo struct {
	seq  int64
	byID map[int64]FoundReport
}

func newTestFoundRepo() *testFoundRepo {
	return &testFoundRepo{byID: map[int64]FoundReport{}}
}

func (r *testFoundRepo) Create(ctx context.Context, rep FoundReport) (FoundReport, error) {
	r.seq++
	rep.ID = r.seq
	r.byID[rep.ID] = rep
	return rep, nil
}

func (r *testFoundRepo) List(ctx context.Context, f Filter) ([]FoundReport, error) {
	out := make([]FoundReport, 0)
	for _, rep := range r.byID {
		if f.PetType != "" && rep.PetType != f.PetType {
			continue
		}
		out = append(out, rep)
	}
	return out, nil
}

func newTestService() (*Service, *testLostRepo, *testFoundRepo) {
	lost := newTestLostRepo()
	found := newTestFoundRepo()
	return NewService(lost, found), lost, found
}

func validLostInput() CreateLostInput {
	return CreateLostInput{
		PetType:          "dog",
		Breed:            "labrador",
		Color:            "black",
		Gender:           "male",
		Features:         "white paws, red collar",
		LostTime:         time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC),
		LostLocationText: "Riverside Park",
		ContactInfo:      "555-0100",
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_CreateLost_OK(t *testing.T) {
	svc, lost, _ := newTestService()

	rep, err := svc.CreateLost(context.Background(), validLostInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if rep.IsFound {
		t.Fatal("new report must not be resolved")
	}
	if rep.FoundTime != nil {
		t.Fatal("found_time must be nil until resolved")
	}
	if rep.CreatedAt.IsZero() || !rep.CreatedAt.Equal(rep.UpdatedAt) {
		t.Fatalf("timestamps not set: created=%v updated=%v", rep.CreatedAt, rep.UpdatedAt)
	}
	if len(lost.byID) != 1 {
		t.Fatalf("expected 1 stored report, got %d", len(lost.byID))
	}
}

func TestService_CreateLost_MissingField(t *testing.T) {
	svc, lost, _ := newTestService()

	in := validLostInput()
	in.ContactInfo = "   "

	if _, err := svc.CreateLost(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(lost.byID) != 0 {
		t.Fatal("no record must be created on validation failure")
	}
}

func TestService_CreateLost_OtherBreed(t *testing.T) {
	svc, _, _ := newTestService()

	in := validLostInput()
	in.Breed = BreedOther
	in.OtherBreed = ""
	if _, err := svc.CreateLost(context.Background(), in); !errors.Is(err, ErrOtherBreedRequired) {
		t.Fatalf("expected ErrOtherBreedRequired, got %v", err)
	}

	in.OtherBreed = "pharaoh hound"
	rep, err := svc.CreateLost(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Breed != "pharaoh hound" {
		t.Fatalf("expected free-text breed stored, got %q", rep.Breed)
	}
}

func TestService_CreateLost_TooManyPhotos(t *testing.T) {
	svc, lost, _ := newTestService()

	in := validLostInput()
	in.Photos = []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}

	if _, err := svc.CreateLost(context.Background(), in); !errors.Is(err, ErrTooManyPhotos) {
		t.Fatalf("expected ErrTooManyPhotos, got %v", err)
	}
	if len(lost.byID) != 0 {
		t.Fatal("no record must be created when the photo cap is exceeded")
	}
}

func TestService_CreateFound_BreedOptional(t *testing.T) {
	svc, _, _ := newTestService()

	rep, err := svc.CreateFound(context.Background(), CreateFoundInput{
		PetType:           "cat",
		Color:             "white",
		Gender:            "unknown",
		Features:          "friendly",
		FoundTime:         time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		FoundLocationText: "Main St",
		ContactInfo:       "555-0100",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Breed != "" {
		t.Fatalf("expected empty breed, got %q", rep.Breed)
	}
	if len(rep.Photos) != 0 {
		t.Fatalf("expected empty photo list, got %v", rep.Photos)
	}
}

func TestService_MarkFound_TransitionsOnce(t *testing.T) {
	svc, _, _ := newTestService()

	rep, err := svc.CreateLost(context.Background(), validLostInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, changed, err := svc.MarkFound(context.Background(), rep.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("first call must report a transition")
	}
	if !resolved.IsFound || resolved.FoundTime == nil {
		t.Fatal("report must be resolved with found_time set")
	}
	if resolved.FoundTime.Before(resolved.CreatedAt) {
		t.Fatalf("found_time %v before created_at %v", resolved.FoundTime, resolved.CreatedAt)
	}

	// segunda llamada: sin mutación, changed=false
	again, changed, err := svc.MarkFound(context.Background(), rep.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("second call must not report a transition")
	}
	if !again.FoundTime.Equal(*resolved.FoundTime) {
		t.Fatalf("found_time must not change: %v vs %v", again.FoundTime, resolved.FoundTime)
	}
}

func TestService_MarkFound_UnknownID(t *testing.T) {
	svc, _, _ := newTestService()

	if _, _, err := svc.MarkFound(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ListLost_FiltersCompose(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mk := func(petType, color, location string, offset time.Duration) {
		in := validLostInput()
		in.PetType = petType
		in.Color = color
		in.LostLocationText = location
		in.LostTime = base.Add(offset)
		if _, err := svc.CreateLost(ctx, in); err != nil {
			t.Fatalf("seeding report: %v", err)
		}
	}
	mk("dog", "black", "Riverside Park", 0)
	mk("dog", "white", "Main St", time.Minute)
	mk("cat", "black", "Riverside Park", 2*time.Minute)

	got, err := svc.ListLost(ctx, Filter{PetType: "dog", Color: "black"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 report matching both filters, got %d", len(got))
	}
	if got[0].PetType != "dog" || got[0].Color != "black" {
		t.Fatalf("wrong report matched: %+v", got[0])
	}

	// filtro vacío no restringe
	all, err := svc.ListLost(ctx, Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 reports, got %d", len(all))
	}
}

func TestService_ListLost_StatusFilter(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, err := svc.CreateLost(ctx, validLostInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateLost(ctx, validLostInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.MarkFound(ctx, a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unresolved, err := svc.ListLost(ctx, Filter{Status: StatusLost})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unresolved) != 1 || unresolved[0].IsFound {
		t.Fatalf("status=lost must return only unresolved reports, got %+v", unresolved)
	}

	resolved, err := svc.ListLost(ctx, Filter{Status: StatusFound})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 1 || !resolved[0].IsFound {
		t.Fatalf("status=found must return only resolved reports, got %+v", resolved)
	}

	// status inválido no filtra
	all, err := svc.ListLost(ctx, Filter{Status: "whatever"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("invalid status must not filter, got %d reports", len(all))
	}
}
