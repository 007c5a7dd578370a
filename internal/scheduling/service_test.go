package scheduling_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonas-Sn/Trabalho-Final/internal/directory"
	"github.com/Jonas-Sn/Trabalho-Final/internal/notify"
	"github.com/Jonas-Sn/Trabalho-Final/internal/scheduling"
)

const (
	patientID  = "11111111111"
	patient2ID = "22222222222"
	gpID       = "00000000002"
	nutriID    = "00000000003"
	nutri2ID   = "00000000005"
	pedID      = "00000000004"
)

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(scheduling.DateLayout)
}

type testEnv struct {
	svc    *scheduling.Service
	people *directory.MemoryStore
	inbox  *notify.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	people := directory.NewMemoryStore()
	seed := []directory.Person{
		{ID: "00000000001", Name: "Administrator", Role: directory.RoleAdmin},
		{ID: gpID, Name: "Dr. Carlos Silva", Role: directory.RoleProvider, Specialty: ptr("General Practice")},
		{ID: nutriID, Name: "Dr. Evandro", Role: directory.RoleProvider, Specialty: ptr("Nutritionist")},
		{ID: pedID, Name: "Dra. Sonia", Role: directory.RoleProvider, Specialty: ptr("Pediatrics")},
		{ID: nutri2ID, Name: "Dr. Osmar", Role: directory.RoleProvider, Specialty: ptr("Nutritionist")},
		{ID: patientID, Name: "Cristiano", Role: directory.RolePatient},
		{ID: patient2ID, Name: "Marina", Role: directory.RolePatient},
	}
	for _, p := range seed {
		require.NoError(t, people.CreatePerson(context.Background(), p))
	}

	inbox := notify.NewService(notify.NewMemoryStore())
	svc := scheduling.NewService(
		scheduling.NewMemoryRepository(),
		people,
		inbox,
		scheduling.NewLocalLocker(),
		scheduling.DefaultGrid(),
		zerolog.Nop(),
	)

	return &testEnv{svc: svc, people: people, inbox: inbox}
}

func ptr(s string) *string { return &s }

func TestRequestAppointment_AssignsFirstProviderDeterministically(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.RequestAppointment(ctx, scheduling.RequestInput{
		PatientID: patientID,
		Specialty: "Nutritionist",
		Date:      futureDate(7),
		Time:      "09:00",
	})
	require.NoError(t, err)

	second, err := env.svc.RequestAppointment(ctx, scheduling.RequestInput{
		PatientID: patient2ID,
		Specialty: "Nutritionist",
		Date:      futureDate(7),
		Time:      "09:30",
	})
	require.NoError(t, err)

	// Dr. Evandro (00000000003) precedes Dr. Osmar (00000000005) in
	// directory order and must win both times.
	assert.Equal(t, nutriID, first.ProviderID)
	assert.Equal(t, nutriID, second.ProviderID)
	assert.Equal(t, scheduling.StatusRequested, first.Status)
	assert.Equal(t, "Nutritionist", first.Specialty)
	assert.Equal(t, "Consultation", first.VisitType)
}

func TestRequestAppointment_PreferredProvider(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	appt, err := env.svc.RequestAppointment(ctx, scheduling.RequestInput{
		PatientID:           patientID,
		Specialty:           "Nutritionist",
		PreferredProviderID: nutri2ID,
		Date:                futureDate(7),
		Time:                "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, nutri2ID, appt.ProviderID)

	// A preferred provider from another specialty is rejected.
	_, err = env.svc.RequestAppointment(ctx, scheduling.RequestInput{
		PatientID:           patientID,
		Specialty:           "Nutritionist",
		PreferredProviderID: pedID,
		Date:                futureDate(7),
		Time:                "10:30",
	})
	assert.ErrorIs(t, err, scheduling.ErrSpecialtyMismatch)
}

func TestRequestAppointment_NoProviderForSpecialty(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.RequestAppointment(context.Background(), scheduling.RequestInput{
		PatientID: patientID,
		Specialty: "Dermatology",
		Date:      futureDate(7),
		Time:      "09:00",
	})
	assert.ErrorIs(t, err, scheduling.ErrNoProviderForSpecialty)
}

func TestRequestAppointment_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   scheduling.RequestInput
		want error
	}{
		{
			name: "missing specialty",
			in:   scheduling.RequestInput{PatientID: patientID, Date: futureDate(7), Time: "09:00"},
			want: scheduling.ErrValidation,
		},
		{
			name: "missing date",
			in:   scheduling.RequestInput{PatientID: patientID, Specialty: "Pediatrics", Time: "09:00"},
			want: scheduling.ErrValidation,
		},
		{
			name: "missing time",
			in:   scheduling.RequestInput{PatientID: patientID, Specialty: "Pediatrics", Date: futureDate(7)},
			want: scheduling.ErrValidation,
		},
		{
			name: "time not on grid",
			in:   scheduling.RequestInput{PatientID: patientID, Specialty: "Pediatrics", Date: futureDate(7), Time: "09:15"},
			want: scheduling.ErrValidation,
		},
		{
			name: "past date",
			in:   scheduling.RequestInput{PatientID: patientID, Specialty: "Pediatrics", Date: "2020-01-01", Time: "09:00"},
			want: scheduling.ErrValidation,
		},
		{
			name: "unknown patient",
			in:   scheduling.RequestInput{PatientID: "99999999999", Specialty: "Pediatrics", Date: futureDate(7), Time: "09:00"},
			want: scheduling.ErrUnknownPatient,
		},
		{
			name: "provider id used as patient",
			in:   scheduling.RequestInput{PatientID: gpID, Specialty: "Pediatrics", Date: futureDate(7), Time: "09:00"},
			want: scheduling.ErrUnknownPatient,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.RequestAppointment(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestScheduleAppointment_ConflictOnOccupiedSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	date := futureDate(10)

	_, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patientID,
		ProviderID: gpID,
		Date:       date,
		Time:       "11:00",
	})
	require.NoError(t, err)

	_, err = env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patient2ID,
		ProviderID: gpID,
		Date:       date,
		Time:       "11:00",
	})
	assert.ErrorIs(t, err, scheduling.ErrSlotConflict)

	// The same time with another provider is fine.
	_, err = env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patient2ID,
		ProviderID: pedID,
		Date:       date,
		Time:       "11:00",
	})
	assert.NoError(t, err)
}

func TestConcurrentBooking_OnlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	date := futureDate(14)

	const attempts = 25

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = env.svc.ScheduleAppointment(context.Background(), scheduling.ScheduleInput{
				PatientID:  patientID,
				ProviderID: gpID,
				Date:       date,
				Time:       "14:00",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	conflicts := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			require.ErrorIs(t, err, scheduling.ErrSlotConflict)
			conflicts++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestSlotReuseAfterCancellation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	date := futureDate(5)

	first, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patientID,
		ProviderID: gpID,
		Date:       date,
		Time:       "09:00",
	})
	require.NoError(t, err)

	_, err = env.svc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	second, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patient2ID,
		ProviderID: gpID,
		Date:       date,
		Time:       "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, patient2ID, second.PatientID)
}

func TestLifecycle_CompleteOnlyFromScheduled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	requested, err := env.svc.RequestAppointment(ctx, scheduling.RequestInput{
		PatientID: patientID,
		Specialty: "Pediatrics",
		Date:      futureDate(3),
		Time:      "08:00",
	})
	require.NoError(t, err)

	// Requested cannot be completed.
	_, err = env.svc.Complete(ctx, requested.ID, "s", "o")
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)

	got, err := env.svc.ListForPatient(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, scheduling.StatusRequested, got[0].Status)

	// Approve then complete.
	_, err = env.svc.Approve(ctx, requested.ID)
	require.NoError(t, err)

	completed, err := env.svc.Complete(ctx, requested.ID, "all good", "healthy")
	require.NoError(t, err)
	assert.Equal(t, scheduling.StatusCompleted, completed.Status)

	// Completed is terminal.
	_, err = env.svc.Complete(ctx, requested.ID, "again", "again")
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)
	_, err = env.svc.Approve(ctx, requested.ID)
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)
	_, err = env.svc.Cancel(ctx, requested.ID)
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)
}

func TestLifecycle_CancelledStaysCancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	appt, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patientID,
		ProviderID: gpID,
		Date:       futureDate(3),
		Time:       "15:30",
	})
	require.NoError(t, err)

	_, err = env.svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)

	_, err = env.svc.Complete(ctx, appt.ID, "", "")
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)
	_, err = env.svc.Approve(ctx, appt.ID)
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)
}

func TestTransitions_UnknownAppointment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Approve(ctx, 404)
	assert.ErrorIs(t, err, scheduling.ErrAppointmentNotFound)
	_, err = env.svc.Cancel(ctx, 404)
	assert.ErrorIs(t, err, scheduling.ErrAppointmentNotFound)
	_, err = env.svc.Complete(ctx, 404, "", "")
	assert.ErrorIs(t, err, scheduling.ErrAppointmentNotFound)
}

func TestAvailableSlots_ReflectsActiveBookingsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	date := futureDate(21)

	free, err := env.svc.AvailableSlots(ctx, gpID, date)
	require.NoError(t, err)
	require.Len(t, free, 20)
	assert.Equal(t, "08:00", free[0])
	assert.Equal(t, "17:30", free[len(free)-1])

	times := []string{"09:00", "10:30", "16:00"}
	var ids []int64
	for _, tm := range times {
		appt, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
			PatientID:  patientID,
			ProviderID: gpID,
			Date:       date,
			Time:       tm,
		})
		require.NoError(t, err)
		ids = append(ids, appt.ID)
	}

	free, err = env.svc.AvailableSlots(ctx, gpID, date)
	require.NoError(t, err)
	assert.Len(t, free, 17)
	assert.NotContains(t, free, "09:00")
	assert.NotContains(t, free, "10:30")
	assert.NotContains(t, free, "16:00")

	// Grid order is preserved.
	for i := 1; i < len(free); i++ {
		assert.Less(t, free[i-1], free[i])
	}

	_, err = env.svc.Cancel(ctx, ids[1])
	require.NoError(t, err)

	free, err = env.svc.AvailableSlots(ctx, gpID, date)
	require.NoError(t, err)
	assert.Len(t, free, 18)
	assert.Contains(t, free, "10:30")
}

func TestAvailableSlots_UnknownProvider(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.AvailableSlots(context.Background(), "99999999999", futureDate(1))
	assert.ErrorIs(t, err, scheduling.ErrUnknownProvider)

	// Patients are not bookable resources.
	_, err = env.svc.AvailableSlots(context.Background(), patientID, futureDate(1))
	assert.ErrorIs(t, err, scheduling.ErrUnknownProvider)
}

func TestEndToEndRequestApproveComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	date := futureDate(30)

	appt, err := env.svc.RequestAppointment(ctx, scheduling.RequestInput{
		PatientID: patientID,
		Specialty: "Nutritionist",
		Date:      date,
		Time:      "10:00",
		Notes:     "first visit",
	})
	require.NoError(t, err)
	assert.Equal(t, scheduling.StatusRequested, appt.Status)

	count, err := env.inbox.UnreadCount(ctx, patientID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = env.svc.Approve(ctx, appt.ID)
	require.NoError(t, err)

	_, err = env.svc.Complete(ctx, appt.ID, "Diet reviewed", "Follow-up in 3 months")
	require.NoError(t, err)

	// Three notifications, newest first.
	msgs, err := env.inbox.List(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0].Text, "completed")
	assert.Contains(t, msgs[1].Text, "approved")
	assert.Contains(t, msgs[2].Text, "awaiting approval")

	// Summary and outcome are retrievable through the patient listing.
	appts, err := env.svc.ListForPatient(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, scheduling.StatusCompleted, appts[0].Status)
	assert.Equal(t, "Diet reviewed", appts[0].Summary)
	assert.Equal(t, "Follow-up in 3 months", appts[0].Outcome)

	require.NoError(t, env.inbox.MarkAllRead(ctx, patientID))
	count, err = env.inbox.UnreadCount(ctx, patientID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCancelEmitsNoNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	appt, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patientID,
		ProviderID: gpID,
		Date:       futureDate(2),
		Time:       "13:00",
	})
	require.NoError(t, err)

	_, err = env.svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)

	count, err := env.inbox.UnreadCount(ctx, patientID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestListForProvider_ExcludesCancelledAndCarriesHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	date := futureDate(8)

	// A completed visit that becomes the patient's history.
	past, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patientID,
		ProviderID: nutriID,
		Date:       date,
		Time:       "08:00",
	})
	require.NoError(t, err)
	_, err = env.svc.Complete(ctx, past.ID, "Diet reviewed", "OK")
	require.NoError(t, err)

	// An upcoming visit with the GP, plus one cancelled booking.
	upcoming, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patientID,
		ProviderID: gpID,
		Date:       futureDate(9),
		Time:       "09:30",
	})
	require.NoError(t, err)

	cancelled, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patient2ID,
		ProviderID: gpID,
		Date:       futureDate(9),
		Time:       "10:00",
	})
	require.NoError(t, err)
	_, err = env.svc.Cancel(ctx, cancelled.ID)
	require.NoError(t, err)

	agenda, err := env.svc.ListForProvider(ctx, gpID)
	require.NoError(t, err)
	require.Len(t, agenda, 1)
	assert.Equal(t, upcoming.ID, agenda[0].ID)
	assert.Equal(t, "Cristiano", agenda[0].PatientName)

	require.Len(t, agenda[0].History, 1)
	assert.Equal(t, "Diet reviewed", agenda[0].History[0].Summary)
	assert.Equal(t, "Dr. Evandro", agenda[0].History[0].ProviderName)
}

func TestListAll_FiltersAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	later := futureDate(12)
	sooner := futureDate(11)

	a1, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patientID,
		ProviderID: gpID,
		Date:       later,
		Time:       "09:00",
	})
	require.NoError(t, err)

	a2, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patient2ID,
		ProviderID: pedID,
		Date:       sooner,
		Time:       "16:30",
	})
	require.NoError(t, err)

	all, err := env.svc.ListAll(ctx, scheduling.ListFilters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Sorted by date then time ascending.
	assert.Equal(t, a2.ID, all[0].ID)
	assert.Equal(t, a1.ID, all[1].ID)
	assert.Equal(t, "Dra. Sonia", all[0].ProviderName)

	byPatient, err := env.svc.ListAll(ctx, scheduling.ListFilters{PatientQuery: "cristiano"})
	require.NoError(t, err)
	require.Len(t, byPatient, 1)
	assert.Equal(t, a1.ID, byPatient[0].ID)

	byPatientID, err := env.svc.ListAll(ctx, scheduling.ListFilters{PatientQuery: "22222"})
	require.NoError(t, err)
	require.Len(t, byPatientID, 1)
	assert.Equal(t, a2.ID, byPatientID[0].ID)

	byProvider, err := env.svc.ListAll(ctx, scheduling.ListFilters{ProviderQuery: "sonia"})
	require.NoError(t, err)
	require.Len(t, byProvider, 1)
	assert.Equal(t, a2.ID, byProvider[0].ID)

	byDate, err := env.svc.ListAll(ctx, scheduling.ListFilters{Date: later})
	require.NoError(t, err)
	require.Len(t, byDate, 1)

	_, err = env.svc.Cancel(ctx, a1.ID)
	require.NoError(t, err)

	byStatus, err := env.svc.ListAll(ctx, scheduling.ListFilters{Status: scheduling.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, a1.ID, byStatus[0].ID)
}

func TestSendVisitReminders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	date := futureDate(1)

	scheduled, err := env.svc.ScheduleAppointment(ctx, scheduling.ScheduleInput{
		PatientID:  patientID,
		ProviderID: gpID,
		Date:       date,
		Time:       "09:00",
	})
	require.NoError(t, err)

	// Requested appointments are not reminded.
	_, err = env.svc.RequestAppointment(ctx, scheduling.RequestInput{
		PatientID: patient2ID,
		Specialty: "Pediatrics",
		Date:      date,
		Time:      "09:30",
	})
	require.NoError(t, err)

	sent, err := env.svc.SendVisitReminders(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	msgs, err := env.inbox.List(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, fmt.Sprintf("You have an appointment tomorrow at %s.", scheduled.Time), msgs[0].Text)

	// A second run sends nothing new.
	sent, err = env.svc.SendVisitReminders(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
