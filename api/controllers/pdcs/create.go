package pdcs

import (
	"net/http"

	"github.com/propnest/pdc-engine/api/responses"
	"github.com/propnest/pdc-engine/api/validators"
	"github.com/propnest/pdc-engine/internal/pdc"
	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
	"github.com/propnest/pdc-engine/pkg/logger"
)

// Create registers a single cheque in the received state.
func Create(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cheque service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), pdc.CreateInput{
			TenantID:  req.TenantID,
			LeaseID:   req.LeaseID,
			InvoiceID: req.InvoiceID,
			Cheque:    req.toSpec(),
			Actor:     actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// BulkCreate registers up to 24 cheques atomically for one tenant.
func BulkCreate(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cheque service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req bulkCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cheques := make([]pdc.ChequeSpec, 0, len(req.Cheques))
		for _, spec := range req.Cheques {
			cheques = append(cheques, spec.toSpec())
		}

		created, err := svc.BulkCreate(r.Context(), pdc.BulkCreateInput{
			TenantID:  req.TenantID,
			LeaseID:   req.LeaseID,
			InvoiceID: req.InvoiceID,
			Cheques:   cheques,
			Actor:     actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"items": created,
			"count": len(created),
		})
	}
}
