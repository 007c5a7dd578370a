package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Jonas-Sn/Trabalho-Final/internal/directory"
	"github.com/Jonas-Sn/Trabalho-Final/internal/notify"
	redisclient "github.com/Jonas-Sn/Trabalho-Final/internal/redis"
	"github.com/Jonas-Sn/Trabalho-Final/internal/scheduling"
)

func requestAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RequestAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.RequestAppointment(r.Context(), scheduling.RequestInput{
			PatientID:           req.PatientID,
			Specialty:           req.Specialty,
			PreferredProviderID: req.ProviderID,
			Date:                req.Date,
			Time:                req.Time,
			VisitType:           req.VisitType,
			Notes:               req.Notes,
		})
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func scheduleAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScheduleAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.ScheduleAppointment(r.Context(), scheduling.ScheduleInput{
			PatientID:  req.PatientID,
			ProviderID: req.ProviderID,
			Date:       req.Date,
			Time:       req.Time,
			VisitType:  req.VisitType,
			Notes:      req.Notes,
		})
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func approveAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return transitionHandler(svc.Approve)
}

func cancelAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return transitionHandler(svc.Cancel)
}

func transitionHandler(fn func(ctx context.Context, id int64) (*scheduling.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		appt, err := fn(r.Context(), id)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func completeAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		var req CompleteAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Complete(r.Context(), id, req.Summary, req.Outcome)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func availableSlotsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID := chi.URLParam(r, "id")
		date := r.URL.Query().Get("date")

		times, err := svc.AvailableSlots(r.Context(), providerID, date)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailableSlotsResponse{
			ProviderID: directory.NormalizeID(providerID),
			Date:       date,
			Times:      times,
		})
	}
}

func listForPatientHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.ListForPatient(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		out := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			out = append(out, toAppointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func providerAgendaHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.ListForProvider(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		out := make([]AgendaEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp := AgendaEntryResponse{
				AppointmentResponse: toAppointmentResponse(&e.Appointment),
				PatientName:         e.PatientName,
				History:             make([]VisitRecordResponse, 0, len(e.History)),
			}
			for _, h := range e.History {
				resp.History = append(resp.History, VisitRecordResponse{
					Date:         h.Date,
					Time:         h.Time,
					VisitType:    h.VisitType,
					ProviderName: h.ProviderName,
					Summary:      h.Summary,
					Outcome:      h.Outcome,
				})
			}
			out = append(out, resp)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filters := scheduling.ListFilters{
			PatientQuery:  q.Get("patient"),
			ProviderQuery: q.Get("provider"),
			Status:        scheduling.Status(q.Get("status")),
			Date:          q.Get("date"),
		}

		appts, err := svc.ListAll(r.Context(), filters)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		out := make([]ListedAppointmentResponse, 0, len(appts))
		for _, a := range appts {
			out = append(out, ListedAppointmentResponse{
				AppointmentResponse: toAppointmentResponse(&a.Appointment),
				PatientName:         a.PatientName,
				ProviderName:        a.ProviderName,
				PatientIDDisplay:    directory.FormatID(a.PatientID),
				ProviderIDDisplay:   directory.FormatID(a.ProviderID),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listNotificationsHandler(svc *notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		personID := directory.NormalizeID(chi.URLParam(r, "id"))

		entries, err := svc.List(r.Context(), personID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]NotificationResponse, 0, len(entries))
		for _, n := range entries {
			out = append(out, NotificationResponse{
				ID:        n.ID,
				Text:      n.Text,
				Read:      n.Read,
				CreatedAt: n.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func unreadCountHandler(svc *notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		personID := directory.NormalizeID(chi.URLParam(r, "id"))

		count, err := svc.UnreadCount(r.Context(), personID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, UnreadCountResponse{Count: count})
	}
}

func markAllReadHandler(svc *notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		personID := directory.NormalizeID(chi.URLParam(r, "id"))

		if err := svc.MarkAllRead(r.Context(), personID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func appointmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be an integer")
		return 0, false
	}
	return id, true
}

func handleSchedulingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, scheduling.ErrUnknownPatient):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, scheduling.ErrUnknownProvider):
		writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
	case errors.Is(err, scheduling.ErrNoProviderForSpecialty):
		writeError(w, http.StatusNotFound, "no_provider_for_specialty", err.Error())
	case errors.Is(err, scheduling.ErrSpecialtyMismatch):
		writeError(w, http.StatusBadRequest, "provider_specialty_mismatch", err.Error())
	case errors.Is(err, scheduling.ErrSlotConflict):
		writeError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, scheduling.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
