package scheduling

import "time"

type Status string

const (
	StatusRequested Status = "requested"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Active reports whether the status counts against the no-double-booking
// invariant. Completed visits keep their slot occupied for the day they
// happened; only cancellation frees it.
func (s Status) Active() bool {
	return s == StatusRequested || s == StatusScheduled
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is a visit booked against one provider slot. Date and Time are
// naive wall-clock values in the reference layouts above; the pair together
// with ProviderID is the unit of booking conflict.
type Appointment struct {
	ID         int64
	PatientID  string
	ProviderID string
	Date       string
	Time       string
	VisitType  string
	Specialty  string
	Status     Status
	Notes      string
	Summary    string
	Outcome    string
	Reminded   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VisitRecord is one entry of a patient's completed-visit history as shown
// on the provider's agenda.
type VisitRecord struct {
	Date         string
	Time         string
	VisitType    string
	ProviderName string
	Summary      string
	Outcome      string
}

// ProviderAgendaEntry is a non-cancelled appointment on a provider's agenda,
// augmented with the patient's name and completed-visit history.
type ProviderAgendaEntry struct {
	Appointment
	PatientName string
	History     []VisitRecord
}

// ListedAppointment is an appointment with both participant names resolved,
// as returned by the staff listing.
type ListedAppointment struct {
	Appointment
	PatientName  string
	ProviderName string
}

// ListFilters narrows the staff listing. Zero values mean no filtering.
type ListFilters struct {
	PatientQuery  string // substring of patient name (case-insensitive) or raw id
	ProviderQuery string // substring of provider name (case-insensitive)
	Status        Status
	Date          string
}
