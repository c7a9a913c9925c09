package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/salonflow-backend/api/responses"
	"github.com/angelmondragon/salonflow-backend/api/validators"
	"github.com/angelmondragon/salonflow-backend/internal/scheduler"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/angelmondragon/salonflow-backend/pkg/logger"
	"github.com/angelmondragon/salonflow-backend/pkg/pagination"
)

// AppointmentBook creates a booking plus its paired calendar event. A taken
// slot answers 409.
func AppointmentBook(svc scheduler.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload scheduler.BookAppointmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booked, err := svc.Book(r.Context(), identity, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, booked)
	}
}

func AppointmentGet(svc scheduler.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParseIDParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointment, err := svc.Get(r.Context(), identity, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appointment)
	}
}

func AppointmentList(svc scheduler.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := scheduler.ListAppointmentsRequest{
			Cursor: r.URL.Query().Get("cursor"),
		}

		if req.EmployeeID, err = parseQueryID(r, "employee_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.ClientID, err = parseQueryID(r, "client_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.From, err = parseQueryTime(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.To, err = parseQueryTime(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.Limit, err = validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAppointmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid appointment status"))
				return
			}
			req.Status = &status
		}

		// ?days=N asks for the upcoming window; the service validates N >= 1.
		if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
			days, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": "days"}))
				return
			}
			req.UpcomingDays = &days
		}

		resp, err := svc.List(r.Context(), identity, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func AppointmentUpdate(svc scheduler.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParseIDParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload scheduler.UpdateAppointmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), identity, id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AppointmentCancel cancels a booking and removes the paired calendar event.
// Repeated calls are no-ops.
func AppointmentCancel(svc scheduler.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParseIDParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cancelled, err := svc.Cancel(r.Context(), identity, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cancelled)
	}
}

func AppointmentStats(svc scheduler.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Stats(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
