package pdcs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/propnest/pdc-engine/api/responses"
	"github.com/propnest/pdc-engine/api/validators"
	"github.com/propnest/pdc-engine/internal/pdc"
	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
	"github.com/propnest/pdc-engine/pkg/logger"
)

// Dashboard returns the KPI snapshot computed in a single consistent read.
func Dashboard(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cheque service unavailable"))
			return
		}

		snapshot, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// Withdrawals lists withdrawn cheques with optional reason/date filters.
func Withdrawals(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cheque service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := pdc.WithdrawalFilters{
			Reason: validators.ParseQueryString(r, "reason"),
		}
		from, err := validators.ParseQueryDate(r, "dateFrom")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateFrom = from
		to, err := validators.ParseQueryDate(r, "dateTo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateTo = to

		page, err := svc.WithdrawalHistory(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// TenantHistory lists one tenant's cheques plus their bounce-rate KPI.
func TenantHistory(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cheque service unavailable"))
			return
		}

		tenantID, err := uuid.Parse(chi.URLParam(r, "tenantId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tenant id"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.TenantHistory(r.Context(), tenantID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
