package pdcs

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propnest/pdc-engine/api/middleware"
	"github.com/propnest/pdc-engine/internal/pdc"
	"github.com/propnest/pdc-engine/pkg/enums"
	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
)

type chequeSpecRequest struct {
	ChequeNumber string          `json:"chequeNumber" validate:"required"`
	BankName     string          `json:"bankName" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	ChequeDate   time.Time       `json:"chequeDate" validate:"required"`
}

func (r chequeSpecRequest) toSpec() pdc.ChequeSpec {
	return pdc.ChequeSpec{
		ChequeNumber: r.ChequeNumber,
		BankName:     r.BankName,
		Amount:       r.Amount,
		ChequeDate:   r.ChequeDate,
	}
}

type createRequest struct {
	TenantID  uuid.UUID  `json:"tenantId" validate:"required"`
	LeaseID   *uuid.UUID `json:"leaseId,omitempty"`
	InvoiceID *uuid.UUID `json:"invoiceId,omitempty"`
	chequeSpecRequest
}

type bulkCreateRequest struct {
	TenantID  uuid.UUID           `json:"tenantId" validate:"required"`
	LeaseID   *uuid.UUID          `json:"leaseId,omitempty"`
	InvoiceID *uuid.UUID          `json:"invoiceId,omitempty"`
	Cheques   []chequeSpecRequest `json:"cheques" validate:"required,min=1,max=24,dive"`
}

type depositRequest struct {
	DepositDate   time.Time `json:"depositDate" validate:"required"`
	BankAccountID uuid.UUID `json:"bankAccountId" validate:"required"`
	Version       int64     `json:"version" validate:"required,gt=0"`
}

type clearRequest struct {
	ClearedDate time.Time `json:"clearedDate" validate:"required"`
	Version     int64     `json:"version" validate:"required,gt=0"`
}

type bounceRequest struct {
	BouncedDate  time.Time `json:"bouncedDate" validate:"required"`
	BounceReason string    `json:"bounceReason" validate:"required"`
	Version      int64     `json:"version" validate:"required,gt=0"`
}

type substitutePaymentRequest struct {
	Method        string          `json:"method" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	ExternalTxnID *string         `json:"externalTxnId,omitempty"`
	BankAccountID *uuid.UUID      `json:"bankAccountId,omitempty"`
}

type withdrawRequest struct {
	WithdrawalDate time.Time                 `json:"withdrawalDate" validate:"required"`
	Reason         string                    `json:"reason" validate:"required"`
	Substitute     *substitutePaymentRequest `json:"substitute,omitempty"`
	Version        int64                     `json:"version" validate:"required,gt=0"`
}

type cancelRequest struct {
	Notes   *string `json:"notes,omitempty"`
	Version int64   `json:"version" validate:"required,gt=0"`
}

type replaceRequest struct {
	Cheque  chequeSpecRequest `json:"cheque" validate:"required"`
	Version int64             `json:"version" validate:"required,gt=0"`
}

func actorFromRequest(r *http.Request) (pdc.Actor, error) {
	rawID := middleware.ActorIDFromContext(r.Context())
	if rawID == "" {
		return pdc.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return pdc.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid caller identity")
	}
	role, err := enums.ParseActorRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return pdc.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "unknown role")
	}
	return pdc.Actor{ID: id, Role: role}, nil
}

func pdcIDFromRequest(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "pdcId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cheque id")
	}
	return id, nil
}
