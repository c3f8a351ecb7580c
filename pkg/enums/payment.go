package enums

import "fmt"

// PaymentMethod identifies the instrument used for a payment record.
type PaymentMethod string

const (
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCheque,
	PaymentMethodBankTransfer,
	PaymentMethodCash,
	PaymentMethodCard,
}

func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

// PaymentPurpose records why a payment row exists. A PDC posts at most one
// payment per purpose, enforced by a unique index.
type PaymentPurpose string

const (
	PaymentPurposeInvoiceSettlement    PaymentPurpose = "invoice_settlement"
	PaymentPurposeWithdrawalSubstitute PaymentPurpose = "withdrawal_substitute"
)

func (p PaymentPurpose) String() string {
	return string(p)
}
