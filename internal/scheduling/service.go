package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jonas-Sn/Trabalho-Final/internal/directory"
)

var (
	ErrUnknownProvider        = errors.New("unknown provider")
	ErrUnknownPatient         = errors.New("unknown patient")
	ErrSpecialtyMismatch      = errors.New("provider does not have the requested specialty")
	ErrNoProviderForSpecialty = errors.New("no provider registered for the requested specialty")
	ErrSlotConflict           = errors.New("slot already has an active appointment for this provider")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrValidation             = errors.New("validation failed")
)

// Notification texts emitted on lifecycle transitions.
const (
	noticeRequested = "Your appointment request is awaiting approval."
	noticeApproved  = "Your appointment has been approved!"
	noticeCompleted = "Your appointment has been completed! See the summary in your history."
)

const defaultVisitType = "Consultation"

// Notifier appends a message to a person's notification log.
type Notifier interface {
	Emit(ctx context.Context, recipientID, text string) error
}

// Service is the scheduling engine. It owns slot availability, provider
// assignment, the booking conflict guard and the appointment lifecycle.
// All collaborators are injected; the engine keeps no global state.
type Service struct {
	repo     Repository
	people   directory.Store
	notifier Notifier
	locker   Locker
	grid     Grid
	log      zerolog.Logger
}

func NewService(repo Repository, people directory.Store, notifier Notifier, locker Locker, grid Grid, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		people:   people,
		notifier: notifier,
		locker:   locker,
		grid:     grid,
		log:      log,
	}
}

// Grid exposes the canonical grid so callers can render slot pickers.
func (s *Service) Grid() Grid {
	return s.grid
}

type RequestInput struct {
	PatientID           string
	Specialty           string
	PreferredProviderID string // optional
	Date                string
	Time                string
	VisitType           string
	Notes               string
}

type ScheduleInput struct {
	PatientID  string
	ProviderID string
	Date       string
	Time       string
	VisitType  string
	Notes      string
}

// RequestAppointment is the patient self-service path: the provider is
// resolved from the requested specialty, the slot is reserved under the
// conflict guard and the appointment starts in requested status.
func (s *Service) RequestAppointment(ctx context.Context, in RequestInput) (*Appointment, error) {
	patientID := directory.NormalizeID(in.PatientID)

	if in.Specialty == "" {
		return nil, fmt.Errorf("%w: specialty is required", ErrValidation)
	}
	if err := s.validateSlot(in.Date, in.Time); err != nil {
		return nil, err
	}
	if err := s.validatePatient(ctx, patientID); err != nil {
		return nil, err
	}

	provider, err := s.resolveProvider(ctx, in.Specialty, in.PreferredProviderID)
	if err != nil {
		return nil, err
	}

	appt := Appointment{
		PatientID:  patientID,
		ProviderID: provider.ID,
		Date:       in.Date,
		Time:       in.Time,
		VisitType:  visitTypeOrDefault(in.VisitType),
		Specialty:  in.Specialty,
		Status:     StatusRequested,
		Notes:      in.Notes,
	}

	created, err := s.reserve(ctx, appt)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, patientID, noticeRequested)

	s.log.Info().
		Int64("appointment_id", created.ID).
		Str("provider_id", created.ProviderID).
		Str("date", created.Date).
		Str("time", created.Time).
		Msg("appointment requested")

	return created, nil
}

// ScheduleAppointment is the staff path: both participants are named
// explicitly and the appointment starts directly in scheduled status. The
// specialty is implied by the chosen provider.
func (s *Service) ScheduleAppointment(ctx context.Context, in ScheduleInput) (*Appointment, error) {
	patientID := directory.NormalizeID(in.PatientID)
	providerID := directory.NormalizeID(in.ProviderID)

	if err := s.validateSlot(in.Date, in.Time); err != nil {
		return nil, err
	}
	if err := s.validatePatient(ctx, patientID); err != nil {
		return nil, err
	}

	provider, err := s.people.GetPerson(ctx, providerID)
	if err != nil {
		if errors.Is(err, directory.ErrPersonNotFound) {
			return nil, ErrUnknownProvider
		}
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if !provider.IsProvider() {
		return nil, ErrUnknownProvider
	}

	appt := Appointment{
		PatientID:  patientID,
		ProviderID: provider.ID,
		Date:       in.Date,
		Time:       in.Time,
		VisitType:  visitTypeOrDefault(in.VisitType),
		Specialty:  provider.SpecialtyName(),
		Status:     StatusScheduled,
		Notes:      in.Notes,
	}

	created, err := s.reserve(ctx, appt)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("appointment_id", created.ID).
		Str("provider_id", created.ProviderID).
		Str("date", created.Date).
		Str("time", created.Time).
		Msg("appointment scheduled by staff")

	return created, nil
}

// reserve runs the check-then-insert as one critical section per slot key.
// The repository's own uniqueness check backs this up, so even a lost lock
// cannot let two active appointments share a slot.
func (s *Service) reserve(ctx context.Context, appt Appointment) (*Appointment, error) {
	key := slotKey(appt.ProviderID, appt.Date, appt.Time)

	var created *Appointment

	err := s.locker.WithSlotLock(ctx, key, func(lockCtx context.Context) error {
		existing, err := s.repo.FindActiveBySlot(lockCtx, appt.ProviderID, appt.Date, appt.Time)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check active appointment: %w", err)
		}
		if existing != nil {
			return ErrSlotConflict
		}

		created, err = s.repo.Create(lockCtx, appt)
		if err != nil {
			if errors.Is(err, ErrSlotTaken) {
				return ErrSlotConflict
			}
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Approve moves a requested appointment to scheduled and notifies the patient.
func (s *Service) Approve(ctx context.Context, id int64) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusRequested {
		return nil, fmt.Errorf("%w: only requested appointments can be approved", ErrInvalidTransition)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, StatusRequested, StatusScheduled)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Status changed between the read and the swap.
			return nil, fmt.Errorf("%w: only requested appointments can be approved", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("approve appointment: %w", err)
	}

	s.emit(ctx, updated.PatientID, noticeApproved)

	s.log.Info().Int64("appointment_id", id).Msg("appointment approved")

	return updated, nil
}

// Cancel moves a requested or scheduled appointment to cancelled. The slot
// becomes reusable because cancelled rows are excluded from conflict checks;
// no explicit release happens, and no notification is sent.
func (s *Service) Cancel(ctx context.Context, id int64) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.Active() {
		return nil, fmt.Errorf("%w: only requested or scheduled appointments can be cancelled", ErrInvalidTransition)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, appt.Status, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, fmt.Errorf("%w: only requested or scheduled appointments can be cancelled", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.log.Info().Int64("appointment_id", id).Msg("appointment cancelled")

	return updated, nil
}

// Complete closes a scheduled appointment, records the visit summary and
// outcome, and notifies the patient. Empty summary or outcome text is
// allowed.
func (s *Service) Complete(ctx context.Context, id int64, summary, outcome string) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusScheduled {
		return nil, fmt.Errorf("%w: only scheduled appointments can be completed", ErrInvalidTransition)
	}

	updated, err := s.repo.Complete(ctx, id, summary, outcome)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, fmt.Errorf("%w: only scheduled appointments can be completed", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("complete appointment: %w", err)
	}

	s.emit(ctx, updated.PatientID, noticeCompleted)

	s.log.Info().Int64("appointment_id", id).Msg("appointment completed")

	return updated, nil
}

// AvailableSlots returns the canonical grid minus the provider's occupied
// times on the date, preserving grid order. The result is a snapshot;
// reservation re-validates under the conflict guard.
func (s *Service) AvailableSlots(ctx context.Context, providerID, date string) ([]string, error) {
	providerID = directory.NormalizeID(providerID)

	if date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be formatted as %s", ErrValidation, DateLayout)
	}

	person, err := s.people.GetPerson(ctx, providerID)
	if err != nil {
		if errors.Is(err, directory.ErrPersonNotFound) {
			return nil, ErrUnknownProvider
		}
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if !person.IsProvider() {
		return nil, ErrUnknownProvider
	}

	occupied, err := s.repo.OccupiedTimes(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("load occupied times: %w", err)
	}

	taken := make(map[string]struct{}, len(occupied))
	for _, t := range occupied {
		taken[t] = struct{}{}
	}

	var free []string
	for _, t := range s.grid.Times() {
		if _, ok := taken[t]; !ok {
			free = append(free, t)
		}
	}
	return free, nil
}

// ListForPatient returns every appointment of the patient ordered by date
// then time, ascending.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	return s.repo.ListByPatient(ctx, directory.NormalizeID(patientID))
}

// ListForProvider returns the provider's agenda: non-cancelled appointments
// in chronological order, each augmented with the patient's name and the
// patient's completed-visit history (newest first).
func (s *Service) ListForProvider(ctx context.Context, providerID string) ([]ProviderAgendaEntry, error) {
	providerID = directory.NormalizeID(providerID)

	appts, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	entries := make([]ProviderAgendaEntry, 0, len(appts))
	for _, a := range appts {
		entry := ProviderAgendaEntry{
			Appointment: a,
			PatientName: s.personName(ctx, a.PatientID),
		}

		history, err := s.repo.ListCompletedByPatient(ctx, a.PatientID)
		if err != nil {
			return nil, fmt.Errorf("load visit history: %w", err)
		}
		for _, h := range history {
			entry.History = append(entry.History, VisitRecord{
				Date:         h.Date,
				Time:         h.Time,
				VisitType:    h.VisitType,
				ProviderName: s.personName(ctx, h.ProviderID),
				Summary:      h.Summary,
				Outcome:      h.Outcome,
			})
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// ListAll returns appointments matching the filters, with participant names
// resolved, sorted by date then time ascending.
func (s *Service) ListAll(ctx context.Context, f ListFilters) ([]ListedAppointment, error) {
	appts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	patientQ := strings.ToLower(strings.TrimSpace(f.PatientQuery))
	providerQ := strings.ToLower(strings.TrimSpace(f.ProviderQuery))

	var out []ListedAppointment
	for _, a := range appts {
		entry := ListedAppointment{
			Appointment:  a,
			PatientName:  s.personName(ctx, a.PatientID),
			ProviderName: s.personName(ctx, a.ProviderID),
		}

		if patientQ != "" &&
			!strings.Contains(strings.ToLower(entry.PatientName), patientQ) &&
			!strings.Contains(a.PatientID, patientQ) {
			continue
		}
		if providerQ != "" && !strings.Contains(strings.ToLower(entry.ProviderName), providerQ) {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Date != "" && a.Date != f.Date {
			continue
		}

		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})

	return out, nil
}

// SendVisitReminders notifies patients of scheduled appointments on the given
// date that have not been reminded yet. It returns how many reminders went out.
func (s *Service) SendVisitReminders(ctx context.Context, date string) (int, error) {
	appts, err := s.repo.FindUnreminded(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("find unreminded appointments: %w", err)
	}

	sent := 0
	for _, a := range appts {
		text := fmt.Sprintf("You have an appointment tomorrow at %s.", a.Time)
		if err := s.notifier.Emit(ctx, a.PatientID, text); err != nil {
			s.log.Error().Err(err).Int64("appointment_id", a.ID).Msg("emit reminder failed")
			continue
		}
		if err := s.repo.MarkReminded(ctx, a.ID); err != nil {
			s.log.Error().Err(err).Int64("appointment_id", a.ID).Msg("mark reminded failed")
			continue
		}
		sent++
	}

	return sent, nil
}

// resolveProvider applies the assignment policy: a preferred provider must
// carry the requested specialty; with no preference the first provider in
// directory order wins.
func (s *Service) resolveProvider(ctx context.Context, specialty, preferredID string) (*directory.Person, error) {
	providers, err := s.people.ListProviders(ctx, specialty)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	if len(providers) == 0 {
		return nil, ErrNoProviderForSpecialty
	}

	if preferredID != "" {
		preferredID = directory.NormalizeID(preferredID)
		for i := range providers {
			if providers[i].ID == preferredID {
				return &providers[i], nil
			}
		}
		return nil, ErrSpecialtyMismatch
	}

	return &providers[0], nil
}

func (s *Service) validatePatient(ctx context.Context, patientID string) error {
	if !directory.ValidID(patientID) {
		return fmt.Errorf("%w: patient id must contain 11 digits", ErrValidation)
	}

	person, err := s.people.GetPerson(ctx, patientID)
	if err != nil {
		if errors.Is(err, directory.ErrPersonNotFound) {
			return ErrUnknownPatient
		}
		return fmt.Errorf("load patient: %w", err)
	}
	if person.Role != directory.RolePatient {
		return ErrUnknownPatient
	}
	return nil
}

func (s *Service) validateSlot(date, timeOfDay string) error {
	if date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if timeOfDay == "" {
		return fmt.Errorf("%w: time is required", ErrValidation)
	}

	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Errorf("%w: date must be formatted as %s", ErrValidation, DateLayout)
	}

	today, _ := time.Parse(DateLayout, time.Now().Format(DateLayout))
	if day.Before(today) {
		return fmt.Errorf("%w: date must not be in the past", ErrValidation)
	}

	if !s.grid.Contains(timeOfDay) {
		return fmt.Errorf("%w: time %q is not a bookable slot", ErrValidation, timeOfDay)
	}

	return nil
}

// personName resolves a display name, falling back to the raw id when the
// person has since been removed from the directory.
func (s *Service) personName(ctx context.Context, id string) string {
	person, err := s.people.GetPerson(ctx, id)
	if err != nil {
		return id
	}
	return person.Name
}

func (s *Service) emit(ctx context.Context, recipientID, text string) {
	if err := s.notifier.Emit(ctx, recipientID, text); err != nil {
		s.log.Error().Err(err).Str("recipient_id", recipientID).Msg("emit notification failed")
	}
}

func visitTypeOrDefault(v string) string {
	if strings.TrimSpace(v) == "" {
		return defaultVisitType
	}
	return v
}

func slotKey(providerID, date, timeOfDay string) string {
	return fmt.Sprintf("%s:%s:%s", providerID, date, timeOfDay)
}
