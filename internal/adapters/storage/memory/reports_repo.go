package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pet-lost-found/internal/domain/reports"
)

type lostRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]reports.LostReport
}

func NewLostRepo() reports.LostRepository {
	return &lostRepo{byID: make(map[int64]reports.LostReport)}
}

func (r *lostRepo) Create(ctx context.Context, rep reports.LostReport) (reports.LostReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	rep.ID = r.seq
	r.byID[rep.ID] = rep
	return rep, nil
}

func (r *lostRepo) GetByID(ctx context.Context, id int64) (reports.LostReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.byID[id]
	if !ok {
		return reports.LostReport{}, reports.ErrNotFound
	}
	return rep, nil
}

func (r *lostRepo) Update(ctx context.Context, rep reports.LostReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[rep.ID]; !ok {
		return reports.ErrNotFound
	}
	r.byID[rep.ID] = rep
	return nil
}

func (r *lostRepo) List(ctx context.Context, f reports.Filter) ([]reports.LostReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.LostReport, 0)
	for _, rep := range r.byID {
		if !matchesLost(rep, f) {
			continue
		}
		out = append(out, rep)
	}

	// más nuevos primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type foundRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]reports.FoundReport
}

func NewFoundRepo() reports.FoundRepository {
	return &foundRepo{byID: make(map[int64]reports.FoundReport)}
}

func (r *foundRepo) Create(ctx context.Context, rep reports.FoundReport) (reports.FoundReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	rep.ID = r.seq
	r.byID[rep.ID] = rep
	return rep, nil
}

func (r *foundRepo) List(ctx context.Context, f reports.Filter) ([]reports.FoundReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.FoundReport, 0)
	for _, rep := range r.byID {
		if !matchesFound(rep, f) {
			continue
		}
		out = append(out, rep)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchesLost(rep reports.LostReport, f reports.Filter) bool {
	if f.PetType != "" && rep.PetType != f.PetType {
		return false
	}
	if !containsFold(rep.LostLocationText, f.Location) {
		return false
	}
	if !containsFold(rep.Color, f.Color) {
		return false
	}
	switch f.Status {
	case reports.StatusLost:
		return !rep.IsFound
	case reports.StatusFound:
		return rep.IsFound
	}
	return true
}

func matchesFound(rep reports.FoundReport, f reports.Filter) bool {
	if f.PetType != "" && rep.PetType != f.PetType {
		return false
	}
	if !containsFold(rep.FoundLocationText, f.Location) {
		return false
	}
	return containsFold(rep.Color, f.Color)
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
