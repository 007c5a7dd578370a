package scheduling

import (
	"context"
	"errors"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned by Create when the store itself detects a
	// second active appointment for the same provider, date and time. It is
	// the storage-level backstop behind the locker.
	ErrSlotTaken = errors.New("slot already has an active appointment")
)

// Repository contains all store interactions needed by the scheduler.
// Implementations must make UpdateStatus and Complete compare-and-swap on the
// current status so that concurrent transitions on one id serialize.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Appointment, error)

	// Create persists a new appointment and assigns its id.
	Create(ctx context.Context, a Appointment) (*Appointment, error)

	// FindActiveBySlot returns the non-cancelled appointment occupying
	// (providerID, date, time), or ErrAppointmentNotFound.
	FindActiveBySlot(ctx context.Context, providerID, date, timeOfDay string) (*Appointment, error)

	// OccupiedTimes returns the times of non-cancelled appointments for the
	// provider on the date, in no particular order.
	OccupiedTimes(ctx context.Context, providerID, date string) ([]string, error)

	// UpdateStatus transitions id from one status to another. It returns
	// ErrAppointmentNotFound when the row is missing or its current status
	// is not the expected one.
	UpdateStatus(ctx context.Context, id int64, from, to Status) (*Appointment, error)

	// Complete is UpdateStatus from scheduled to completed with summary and
	// outcome recorded in the same write.
	Complete(ctx context.Context, id int64, summary, outcome string) (*Appointment, error)

	ListByPatient(ctx context.Context, patientID string) ([]Appointment, error)
	ListByProvider(ctx context.Context, providerID string) ([]Appointment, error)
	ListCompletedByPatient(ctx context.Context, patientID string) ([]Appointment, error)
	ListAll(ctx context.Context) ([]Appointment, error)

	// Reminder worker support.
	FindUnreminded(ctx context.Context, date string) ([]Appointment, error)
	MarkReminded(ctx context.Context, id int64) error
}
