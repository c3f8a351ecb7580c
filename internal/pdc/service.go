package pdc

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propnest/pdc-engine/pkg/config"
	dbpkg "github.com/propnest/pdc-engine/pkg/db"
	"github.com/propnest/pdc-engine/pkg/db/models"
	"github.com/propnest/pdc-engine/pkg/enums"
	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
	"github.com/propnest/pdc-engine/pkg/outbox"
	"github.com/propnest/pdc-engine/pkg/outbox/payloads"
	"github.com/propnest/pdc-engine/pkg/pagination"
)

const (
	// MinBatchSize and MaxBatchSize bound one bulk-create call.
	MinBatchSize = 1
	MaxBatchSize = 24
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTxOptions(ctx context.Context, opts *sql.TxOptions, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the cheque lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PDC, error)
	BulkCreate(ctx context.Context, input BulkCreateInput) ([]models.PDC, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PDC, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*PDCList, error)
	Deposit(ctx context.Context, input DepositInput) (*models.PDC, error)
	Clear(ctx context.Context, input ClearInput) (*models.PDC, error)
	Bounce(ctx context.Context, input BounceInput) (*models.PDC, error)
	Replace(ctx context.Context, input ReplaceInput) (*ReplaceResult, error)
	Withdraw(ctx context.Context, input WithdrawInput) (*models.PDC, error)
	Cancel(ctx context.Context, input CancelInput) (*models.PDC, error)
	Dashboard(ctx context.Context) (*DashboardSnapshot, error)
	WithdrawalHistory(ctx context.Context, params pagination.Params, filters WithdrawalFilters) (*PDCList, error)
	TenantHistory(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*TenantHistory, error)
	Chain(ctx context.Context, id uuid.UUID) ([]models.PDC, error)
	PromoteDue(ctx context.Context, asOf time.Time, batchSize int) (int, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	dashboard config.DashboardConfig
	now       func() time.Time
}

// NewService builds a cheque lifecycle service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, dashboard config.DashboardConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pdc repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    ob,
		dashboard: dashboard,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PDC, error) {
	if err := requireMutator(input.Actor); err != nil {
		return nil, err
	}
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if err := validateChequeSpec(input.Cheque); err != nil {
		return nil, err
	}

	var created *models.PDC
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.requireTenant(ctx, repo, input.TenantID); err != nil {
			return err
		}
		taken, err := repo.ChequeNumberTaken(ctx, input.TenantID, input.Cheque.ChequeNumber)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check cheque number")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeDuplicateCheque, "cheque number already used for tenant").
				WithDetails(map[string]any{"chequeNumber": input.Cheque.ChequeNumber})
		}

		created, err = s.insertCheque(ctx, repo, input.TenantID, input.LeaseID, input.InvoiceID, nil, input.Cheque, input.Actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) BulkCreate(ctx context.Context, input BulkCreateInput) ([]models.PDC, error) {
	if err := requireMutator(input.Actor); err != nil {
		return nil, err
	}
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if len(input.Cheques) < MinBatchSize || len(input.Cheques) > MaxBatchSize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("batch size must be between %d and %d", MinBatchSize, MaxBatchSize)).
			WithDetails(map[string]any{"batchSize": len(input.Cheques)})
	}

	seen := make(map[string]struct{}, len(input.Cheques))
	numbers := make([]string, 0, len(input.Cheques))
	for i, spec := range input.Cheques {
		if err := validateChequeSpec(spec); err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return nil, typed.WithDetails(map[string]any{"index": i, "chequeNumber": spec.ChequeNumber})
			}
			return nil, err
		}
		if _, dup := seen[spec.ChequeNumber]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateCheque, "duplicate cheque number within batch").
				WithDetails(map[string]any{"chequeNumber": spec.ChequeNumber})
		}
		seen[spec.ChequeNumber] = struct{}{}
		numbers = append(numbers, spec.ChequeNumber)
	}

	var created []models.PDC
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.requireTenant(ctx, repo, input.TenantID); err != nil {
			return err
		}
		taken, err := repo.ChequeNumbersTaken(ctx, input.TenantID, numbers)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check cheque numbers")
		}
		if len(taken) > 0 {
			return pkgerrors.New(pkgerrors.CodeDuplicateCheque, "cheque numbers already used for tenant").
				WithDetails(map[string]any{"chequeNumbers": taken})
		}

		rows := make([]*models.PDC, 0, len(input.Cheques))
		for _, spec := range input.Cheques {
			rows = append(rows, newCheque(input.TenantID, input.LeaseID, input.InvoiceID, nil, spec))
		}
		if err := repo.CreatePDCs(ctx, rows); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_pdcs_tenant_cheque_number") {
				return pkgerrors.New(pkgerrors.CodeDuplicateCheque, "cheque number already used for tenant")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cheques")
		}
		created = make([]models.PDC, 0, len(rows))
		for _, row := range rows {
			if err := repo.AppendHistory(ctx, creationHistory(row.ID, input.Actor.ID)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
			}
			created = append(created, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PDC, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pdc id required")
	}
	pdc, err := s.repo.FindByIDWithHistory(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cheque not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cheque")
	}
	return pdc, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*PDCList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cheques")
	}
	return list, nil
}

func (s *service) Deposit(ctx context.Context, input DepositInput) (*models.PDC, error) {
	if err := requireMutator(input.Actor); err != nil {
		return nil, err
	}
	if input.DepositDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit date required")
	}
	if input.BankAccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bank account id required")
	}

	var updated *models.PDC
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pdc, err := s.loadForTransition(ctx, repo, input.PDCID)
		if err != nil {
			return err
		}
		exists, err := repo.BankAccountExists(ctx, input.BankAccountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check bank account")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "bank account not found").
				WithDetails(map[string]any{"bankAccountId": input.BankAccountID})
		}

		err = s.applyTransition(ctx, repo, pdc, enums.PDCStatusDeposited, input.ExpectedVersion, input.Actor, nil, map[string]any{
			"status":                  enums.PDCStatusDeposited,
			"deposit_date":            input.DepositDate,
			"deposit_bank_account_id": input.BankAccountID,
		})
		if err != nil {
			return err
		}
		pdc.DepositDate = &input.DepositDate
		pdc.DepositBankAccountID = &input.BankAccountID
		updated = pdc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Clear(ctx context.Context, input ClearInput) (*models.PDC, error) {
	if err := requireMutator(input.Actor); err != nil {
		return nil, err
	}
	if input.ClearedDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cleared date required")
	}

	var updated *models.PDC
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pdc, err := s.loadForTransition(ctx, repo, input.PDCID)
		if err != nil {
			return err
		}

		err = s.applyTransition(ctx, repo, pdc, enums.PDCStatusCleared, input.ExpectedVersion, input.Actor, nil, map[string]any{
			"status":       enums.PDCStatusCleared,
			"cleared_date": input.ClearedDate,
		})
		if err != nil {
			return err
		}
		pdc.ClearedDate = &input.ClearedDate

		var paymentID uuid.UUID
		if pdc.InvoiceID != nil {
			payment := &models.Payment{
				ID:        uuid.New(),
				PDCID:     pdc.ID,
				TenantID:  pdc.TenantID,
				InvoiceID: pdc.InvoiceID,
				Purpose:   enums.PaymentPurposeInvoiceSettlement,
				Method:    enums.PaymentMethodCheque,
				Amount:    pdc.Amount,
				PostedAt:  s.now(),
			}
			if _, err := repo.CreatePayment(ctx, payment); err != nil {
				if dbpkg.IsUniqueViolation(err, "ux_payments_pdc_purpose") {
					return pkgerrors.New(pkgerrors.CodeVersionConflict, "settlement already posted for cheque")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post invoice payment")
			}
			paymentID = payment.ID
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPDCCleared,
			AggregateType: enums.AggregatePDC,
			AggregateID:   pdc.ID,
			Actor:         buildActor(input.Actor),
			Data: payloads.ChequeClearedEvent{
				PDCID:        pdc.ID,
				TenantID:     pdc.TenantID,
				InvoiceID:    pdc.InvoiceID,
				PaymentID:    paymentID,
				ChequeNumber: pdc.ChequeNumber,
				Amount:       pdc.Amount,
				ClearedAt:    input.ClearedDate,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue cleared event")
		}
		updated = pdc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Bounce(ctx context.Context, input BounceInput) (*models.PDC, error) {
	if err := requireMutator(input.Actor); err != nil {
		return nil, err
	}
	if input.BouncedDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bounced date required")
	}
	if strings.TrimSpace(input.BounceReason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bounce reason required")
	}

	var updated *models.PDC
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pdc, err := s.loadForTransition(ctx, repo, input.PDCID)
		if err != nil {
			return err
		}

		err = s.applyTransition(ctx, repo, pdc, enums.PDCStatusBounced, input.ExpectedVersion, input.Actor, &input.BounceReason, map[string]any{
			"status":        enums.PDCStatusBounced,
			"bounced_date":  input.BouncedDate,
			"bounce_reason": input.BounceReason,
		})
		if err != nil {
			return err
		}
		pdc.BouncedDate = &input.BouncedDate
		pdc.BounceReason = &input.BounceReason

		event := outbox.DomainEvent{
			EventType:     enums.EventPDCBounced,
			AggregateType: enums.AggregatePDC,
			AggregateID:   pdc.ID,
			Actor:         buildActor(input.Actor),
			Data: payloads.ChequeBouncedEvent{
				PDCID:        pdc.ID,
				TenantID:     pdc.TenantID,
				ChequeNumber: pdc.ChequeNumber,
				Amount:       pdc.Amount,
				BounceReason: input.BounceReason,
				BouncedAt:    input.BouncedDate,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue bounced event")
		}
		updated = pdc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Replace(ctx context.Context, input ReplaceInput) (*ReplaceResult, error) {
	if err := requireMutator(input.Actor); err != nil {
		return nil, err
	}
	if err := validateChequeSpec(input.Cheque); err != nil {
		return nil, err
	}

	var result *ReplaceResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		source, err := s.loadForTransition(ctx, repo, input.PDCID)
		if err != nil {
			return err
		}
		if !source.Status.CanTransitionTo(enums.PDCStatusReplaced) {
			return invalidTransition(source.Status, enums.PDCStatusReplaced)
		}
		taken, err := repo.ChequeNumberTaken(ctx, source.TenantID, input.Cheque.ChequeNumber)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check cheque number")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeDuplicateCheque, "cheque number already used for tenant").
				WithDetails(map[string]any{"chequeNumber": input.Cheque.ChequeNumber})
		}

		replacement, err := s.insertCheque(ctx, repo, source.TenantID, source.LeaseID, source.InvoiceID, &source.ID, input.Cheque, input.Actor)
		if err != nil {
			return err
		}

		err = s.applyTransition(ctx, repo, source, enums.PDCStatusReplaced, input.ExpectedVersion, input.Actor, nil, map[string]any{
			"status":                enums.PDCStatusReplaced,
			"replacement_cheque_id": replacement.ID,
		})
		if err != nil {
			return err
		}
		source.ReplacementChequeID = &replacement.ID

		event := outbox.DomainEvent{
			EventType:     enums.EventPDCReplaced,
			AggregateType: enums.AggregatePDC,
			AggregateID:   source.ID,
			Actor:         buildActor(input.Actor),
			Data: payloads.ChequeReplacedEvent{
				OriginalPDCID:    source.ID,
				ReplacementPDCID: replacement.ID,
				TenantID:         source.TenantID,
				ChequeNumber:     replacement.ChequeNumber,
				Amount:           replacement.Amount,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue replaced event")
		}
		result = &ReplaceResult{Original: source, Replacement: replacement}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Withdraw(ctx context.Context, input WithdrawInput) (*models.PDC, error) {
	if err := requireMutator(input.Actor); err != nil {
		return nil, err
	}
	if input.WithdrawalDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal date required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal reason required")
	}
	if input.Substitute != nil {
		if !input.Substitute.Method.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid substitute payment method")
		}
		if !input.Substitute.Amount.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "substitute amount must be positive")
		}
	}

	var updated *models.PDC
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pdc, err := s.loadForTransition(ctx, repo, input.PDCID)
		if err != nil {
			return err
		}
		if input.Substitute != nil && input.Substitute.BankAccountID != nil {
			exists, err := repo.BankAccountExists(ctx, *input.Substitute.BankAccountID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check bank account")
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, "bank account not found")
			}
		}

		updates := map[string]any{
			"status":            enums.PDCStatusWithdrawn,
			"withdrawal_date":   input.WithdrawalDate,
			"withdrawal_reason": input.Reason,
		}
		if input.Substitute != nil {
			updates["replacement_payment_method"] = input.Substitute.Method
		}
		err = s.applyTransition(ctx, repo, pdc, enums.PDCStatusWithdrawn, input.ExpectedVersion, input.Actor, &input.Reason, updates)
		if err != nil {
			return err
		}
		pdc.WithdrawalDate = &input.WithdrawalDate
		pdc.WithdrawalReason = &input.Reason

		var substituteID *uuid.UUID
		if input.Substitute != nil {
			method := input.Substitute.Method
			pdc.ReplacementPaymentMethod = &method
			payment := &models.Payment{
				ID:            uuid.New(),
				PDCID:         pdc.ID,
				TenantID:      pdc.TenantID,
				InvoiceID:     pdc.InvoiceID,
				Purpose:       enums.PaymentPurposeWithdrawalSubstitute,
				Method:        method,
				Amount:        input.Substitute.Amount,
				ExternalTxnID: input.Substitute.ExternalTxnID,
				BankAccountID: input.Substitute.BankAccountID,
				PostedAt:      s.now(),
			}
			if _, err := repo.CreatePayment(ctx, payment); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post substitute payment")
			}
			substituteID = &payment.ID
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPDCWithdrawn,
			AggregateType: enums.AggregatePDC,
			AggregateID:   pdc.ID,
			Actor:         buildActor(input.Actor),
			Data: payloads.ChequeWithdrawnEvent{
				PDCID:               pdc.ID,
				TenantID:            pdc.TenantID,
				ChequeNumber:        pdc.ChequeNumber,
				WithdrawalReason:    input.Reason,
				SubstitutePaymentID: substituteID,
				WithdrawnAt:         input.WithdrawalDate,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue withdrawn event")
		}
		updated = pdc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.PDC, error) {
	if err := requireMutator(input.Actor); err != nil {
		return nil, err
	}

	var updated *models.PDC
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pdc, err := s.loadForTransition(ctx, repo, input.PDCID)
		if err != nil {
			return err
		}
		err = s.applyTransition(ctx, repo, pdc, enums.PDCStatusCancelled, input.ExpectedVersion, input.Actor, input.Notes, map[string]any{
			"status": enums.PDCStatusCancelled,
		})
		if err != nil {
			return err
		}
		updated = pdc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) WithdrawalHistory(ctx context.Context, params pagination.Params, filters WithdrawalFilters) (*PDCList, error) {
	list, err := s.repo.ListWithdrawals(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawals")
	}
	return list, nil
}

func (s *service) TenantHistory(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*TenantHistory, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	var result *TenantHistory
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.requireTenant(ctx, repo, tenantID); err != nil {
			return err
		}
		list, err := repo.ListByTenant(ctx, tenantID, params)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tenant cheques")
		}
		total, cancelled, err := repo.CountTenantCheques(ctx, tenantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tenant cheques")
		}
		bounced, err := repo.CountTenantBounces(ctx, tenantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tenant bounces")
		}
		result = &TenantHistory{
			Items:          list.Items,
			NextCursor:     list.NextCursor,
			TotalCheques:   total,
			CancelledCount: cancelled,
			BouncedCount:   bounced,
			BounceRate:     bounceRate(bounced, total, cancelled),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PromoteDue advances eligible received cheques whose date has arrived. Rows
// changed by a concurrent writer are skipped, so the sweep can run on any
// schedule without double-promoting.
func (s *service) PromoteDue(ctx context.Context, asOf time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "batch size must be positive")
	}

	promoted := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		candidates, err := repo.FindDuePromotionCandidates(ctx, asOf, batchSize)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find due candidates")
		}
		for _, pdc := range candidates {
			rows, err := repo.UpdatePDCGuarded(ctx, pdc.ID, pdc.Version, map[string]any{
				"status": enums.PDCStatusDue,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote cheque")
			}
			if rows == 0 {
				continue
			}
			entry := &models.PDCStatusHistory{
				ID:         uuid.New(),
				PDCID:      pdc.ID,
				FromStatus: enums.PDCStatusReceived,
				ToStatus:   enums.PDCStatusDue,
				ActorID:    uuid.Nil,
			}
			if err := repo.AppendHistory(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventPDCDue,
				AggregateType: enums.AggregatePDC,
				AggregateID:   pdc.ID,
				Data: payloads.ChequeDueEvent{
					PDCID:        pdc.ID,
					TenantID:     pdc.TenantID,
					ChequeNumber: pdc.ChequeNumber,
					Amount:       pdc.Amount,
					ChequeDate:   pdc.ChequeDate,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue due event")
			}
			promoted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return promoted, nil
}

func (s *service) loadForTransition(ctx context.Context, repo Repository, id uuid.UUID) (*models.PDC, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pdc id required")
	}
	pdc, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cheque not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cheque")
	}
	return pdc, nil
}

// applyTransition runs the shared transition steps: version check, edge
// validation, guarded write, and the audit row. On success the in-memory
// record reflects the new status and version.
func (s *service) applyTransition(ctx context.Context, repo Repository, pdc *models.PDC, target enums.PDCStatus, expectedVersion int64, actor Actor, notes *string, updates map[string]any) error {
	if expectedVersion <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "expected version required")
	}
	if pdc.Version != expectedVersion {
		return versionConflict(pdc.Version)
	}
	if !pdc.Status.CanTransitionTo(target) {
		return invalidTransition(pdc.Status, target)
	}

	rows, err := repo.UpdatePDCGuarded(ctx, pdc.ID, expectedVersion, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cheque")
	}
	if rows == 0 {
		// the guard lost a race after the load above matched, so the
		// in-memory version is stale; report what the row holds now.
		current, err := repo.FindByID(ctx, pdc.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cheque version")
		}
		return versionConflict(current.Version)
	}

	entry := &models.PDCStatusHistory{
		ID:         uuid.New(),
		PDCID:      pdc.ID,
		FromStatus: pdc.Status,
		ToStatus:   target,
		ActorID:    actor.ID,
		Notes:      notes,
	}
	if err := repo.AppendHistory(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
	}

	pdc.Status = target
	pdc.Version++
	return nil
}

func (s *service) insertCheque(ctx context.Context, repo Repository, tenantID uuid.UUID, leaseID, invoiceID, originalID *uuid.UUID, spec ChequeSpec, actor Actor) (*models.PDC, error) {
	row := newCheque(tenantID, leaseID, invoiceID, originalID, spec)
	if _, err := repo.CreatePDC(ctx, row); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_pdcs_tenant_cheque_number") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateCheque, "cheque number already used for tenant")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cheque")
	}
	if err := repo.AppendHistory(ctx, creationHistory(row.ID, actor.ID)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
	}
	return row, nil
}

func (s *service) requireTenant(ctx context.Context, repo Repository, tenantID uuid.UUID) error {
	exists, err := repo.TenantExists(ctx, tenantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check tenant")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found").
			WithDetails(map[string]any{"tenantId": tenantID})
	}
	return nil
}

func newCheque(tenantID uuid.UUID, leaseID, invoiceID, originalID *uuid.UUID, spec ChequeSpec) *models.PDC {
	return &models.PDC{
		ID:               uuid.New(),
		TenantID:         tenantID,
		LeaseID:          leaseID,
		InvoiceID:        invoiceID,
		ChequeNumber:     spec.ChequeNumber,
		BankName:         spec.BankName,
		Amount:           spec.Amount,
		ChequeDate:       spec.ChequeDate,
		Status:           enums.PDCStatusReceived,
		OriginalChequeID: originalID,
		Version:          1,
	}
}

func creationHistory(pdcID, actorID uuid.UUID) *models.PDCStatusHistory {
	return &models.PDCStatusHistory{
		ID:         uuid.New(),
		PDCID:      pdcID,
		FromStatus: enums.PDCStatusReceived,
		ToStatus:   enums.PDCStatusReceived,
		ActorID:    actorID,
	}
}

func validateChequeSpec(spec ChequeSpec) error {
	if strings.TrimSpace(spec.ChequeNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cheque number required")
	}
	if strings.TrimSpace(spec.BankName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "bank name required")
	}
	if !spec.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if spec.ChequeDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cheque date required")
	}
	return nil
}

func requireMutator(actor Actor) error {
	if actor.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	if !actor.Role.CanMutatePDC() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not change cheque state")
	}
	return nil
}

func buildActor(actor Actor) *outbox.ActorRef {
	if actor.ID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{ActorID: actor.ID, Role: actor.Role.String()}
}

func invalidTransition(current, requested enums.PDCStatus) error {
	return pkgerrors.New(pkgerrors.CodeInvalidStatus,
		fmt.Sprintf("cannot transition from %s to %s", current, requested)).
		WithDetails(map[string]any{
			"currentStatus":   current,
			"requestedStatus": requested,
		})
}

func versionConflict(currentVersion int64) error {
	return pkgerrors.New(pkgerrors.CodeVersionConflict, "cheque was modified concurrently").
		WithDetails(map[string]any{"currentVersion": currentVersion})
}
