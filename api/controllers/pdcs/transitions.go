package pdcs

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/propnest/pdc-engine/api/responses"
	"github.com/propnest/pdc-engine/api/validators"
	"github.com/propnest/pdc-engine/internal/pdc"
	"github.com/propnest/pdc-engine/pkg/enums"
	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
	"github.com/propnest/pdc-engine/pkg/logger"
)

// Deposit moves a due cheque into the deposited state.
func Deposit(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, actor, ok := transitionSetup(svc, logg, w, r)
		if !ok {
			return
		}

		var req depositRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Deposit(r.Context(), pdc.DepositInput{
			PDCID:           id,
			DepositDate:     req.DepositDate,
			BankAccountID:   req.BankAccountID,
			ExpectedVersion: req.Version,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// Clear settles a deposited cheque, posting the invoice payment when one is
// linked.
func Clear(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, actor, ok := transitionSetup(svc, logg, w, r)
		if !ok {
			return
		}

		var req clearRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Clear(r.Context(), pdc.ClearInput{
			PDCID:           id,
			ClearedDate:     req.ClearedDate,
			ExpectedVersion: req.Version,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// Bounce records a bank rejection of a deposited cheque.
func Bounce(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, actor, ok := transitionSetup(svc, logg, w, r)
		if !ok {
			return
		}

		var req bounceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Bounce(r.Context(), pdc.BounceInput{
			PDCID:           id,
			BouncedDate:     req.BouncedDate,
			BounceReason:    req.BounceReason,
			ExpectedVersion: req.Version,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// Withdraw returns a cheque to the tenant before deposit, optionally
// recording a substitute payment.
func Withdraw(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, actor, ok := transitionSetup(svc, logg, w, r)
		if !ok {
			return
		}

		var req withdrawRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := pdc.WithdrawInput{
			PDCID:           id,
			WithdrawalDate:  req.WithdrawalDate,
			Reason:          req.Reason,
			ExpectedVersion: req.Version,
			Actor:           actor,
		}
		if req.Substitute != nil {
			method, err := enums.ParsePaymentMethod(req.Substitute.Method)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid substitute payment method"))
				return
			}
			input.Substitute = &pdc.SubstitutePayment{
				Method:        method,
				Amount:        req.Substitute.Amount,
				ExternalTxnID: req.Substitute.ExternalTxnID,
				BankAccountID: req.Substitute.BankAccountID,
			}
		}

		updated, err := svc.Withdraw(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// Cancel voids a cheque that was created in error.
func Cancel(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, actor, ok := transitionSetup(svc, logg, w, r)
		if !ok {
			return
		}

		var req cancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Cancel(r.Context(), pdc.CancelInput{
			PDCID:           id,
			Notes:           req.Notes,
			ExpectedVersion: req.Version,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// Replace swaps a bounced cheque for a fresh instrument and returns both
// sides of the new chain link.
func Replace(svc pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, actor, ok := transitionSetup(svc, logg, w, r)
		if !ok {
			return
		}

		var req replaceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Replace(r.Context(), pdc.ReplaceInput{
			PDCID:           id,
			Cheque:          req.Cheque.toSpec(),
			ExpectedVersion: req.Version,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func transitionSetup(svc pdc.Service, logg *logger.Logger, w http.ResponseWriter, r *http.Request) (id uuid.UUID, actor pdc.Actor, ok bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cheque service unavailable"))
		return
	}
	parsed, err := pdcIDFromRequest(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	actor, err = actorFromRequest(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	return parsed, actor, true
}
