package pdcs

import (
	"net/http"
	"strings"

	"github.com/propnest/pdc-engine/api/responses"
	"github.com/propnest/pdc-engine/api/validators"
	"github.com/propnest/pdc-engine/internal/pdc"
	"github.com/propnest/pdc-engine/pkg/enums"
	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
	"github.com/propnest/pdc-engine/pkg/logger"
	"github.com/propnest/pdc-engine/pkg/pagination"
)

const maxPageSize = 100

// Get returns one cheque by id.
func Get(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cheque service unavailable"))
			return
		}

		id, err := pdcIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// List returns a filtered, cursor-paginated page of cheques.
func List(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
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

		filters, err := listFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Chain walks the replacement chain containing the cheque, oldest first.
func Chain(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cheque service unavailable"))
			return
		}

		id, err := pdcIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		chain, err := svc.Chain(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"items":  chain,
			"length": len(chain),
		})
	}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxPageSize)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func listFilters(r *http.Request) (pdc.ListFilters, error) {
	filters := pdc.ListFilters{}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParsePDCStatus(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown status").WithDetails(map[string]any{"status": raw})
		}
		filters.Status = &status
	}

	tenantID, err := validators.ParseQueryUUID(r, "tenantId")
	if err != nil {
		return filters, err
	}
	filters.TenantID = tenantID

	filters.BankName = validators.ParseQueryString(r, "bankName")

	from, err := validators.ParseQueryDate(r, "dateFrom")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = from

	to, err := validators.ParseQueryDate(r, "dateTo")
	if err != nil {
		return filters, err
	}
	filters.DateTo = to

	return filters, nil
}
