package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is the in-process store. A single mutex serializes all
// writes, which alone is enough to keep the double-booking invariant on one
// node; the Locker on top keeps the service code identical across backends.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*Appointment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]*Appointment)}
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) Create(_ context.Context, a Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.ProviderID == a.ProviderID &&
			existing.Date == a.Date &&
			existing.Time == a.Time &&
			existing.Status != StatusCancelled {
			return nil, ErrSlotTaken
		}
	}

	r.nextID++
	a.ID = r.nextID
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	cp := a
	r.byID[a.ID] = &cp

	out := a
	return &out, nil
}

func (r *MemoryRepository) FindActiveBySlot(_ context.Context, providerID, date, timeOfDay string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.ProviderID == providerID && a.Date == date && a.Time == timeOfDay && a.Status != StatusCancelled {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) OccupiedTimes(_ context.Context, providerID, date string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, a := range r.byID {
		if a.ProviderID == providerID && a.Date == date && a.Status != StatusCancelled {
			out = append(out, a.Time)
		}
	}
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id int64, from, to Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}

	a.Status = to
	a.UpdatedAt = time.Now()

	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) Complete(_ context.Context, id int64, summary, outcome string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || a.Status != StatusScheduled {
		return nil, ErrAppointmentNotFound
	}

	a.Status = StatusCompleted
	a.Summary = summary
	a.Outcome = outcome
	a.UpdatedAt = time.Now()

	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) ListByPatient(_ context.Context, patientID string) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Appointment
	for _, a := range r.byID {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	sortChronological(out)
	return out, nil
}

func (r *MemoryRepository) ListByProvider(_ context.Context, providerID string) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Appointment
	for _, a := range r.byID {
		if a.ProviderID == providerID && a.Status != StatusCancelled {
			out = append(out, *a)
		}
	}
	sortChronological(out)
	return out, nil
}

func (r *MemoryRepository) ListCompletedByPatient(_ context.Context, patientID string) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Appointment
	for _, a := range r.byID {
		if a.PatientID == patientID && a.Status == StatusCompleted {
			out = append(out, *a)
		}
	}

	// History is shown newest first.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Appointment, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, *a)
	}
	sortChronological(out)
	return out, nil
}

func (r *MemoryRepository) FindUnreminded(_ context.Context, date string) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Appointment
	for _, a := range r.byID {
		if a.Date == date && a.Status == StatusScheduled && !a.Reminded {
			out = append(out, *a)
		}
	}
	sortChronological(out)
	return out, nil
}

func (r *MemoryRepository) MarkReminded(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.Reminded = true
	return nil
}

func sortChronological(appts []Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		if appts[i].Time != appts[j].Time {
			return appts[i].Time < appts[j].Time
		}
		return appts[i].ID < appts[j].ID
	})
}
