package models

import "time"

// PaymentProvider is the gateway a transaction went through
type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "STRIPE"
	ProviderPayPal PaymentProvider = "PAYPAL"
)

// PaymentStatus is the reconciliation state of a transaction
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// PaymentType is what a checkout pays for
type PaymentType string

const (
	PaymentTypeWorkbook         PaymentType = "workbook"
	PaymentTypeCorporatePayment PaymentType = "corporate_payment"
	PaymentTypeSubscription     PaymentType = "subscription"
	PaymentTypeOther            PaymentType = "other"
)

// IsValid reports whether t is a known payment type
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeWorkbook, PaymentTypeCorporatePayment, PaymentTypeSubscription, PaymentTypeOther:
		return true
	}
	return false
}

// PaymentTransaction is a payment attempt tracked against a gateway session
type PaymentTransaction struct {
	ID            int64           `json:"id"`
	UserID        *int64          `json:"user"`
	Provider      PaymentProvider `json:"provider" validate:"omitempty,oneof=STRIPE PAYPAL"`
	Amount        float64         `json:"amount" validate:"gte=0"`
	Currency      string          `json:"currency" validate:"omitempty,len=3"`
	Status        PaymentStatus   `json:"status" validate:"omitempty,oneof=PENDING SUCCEEDED FAILED"`
	TransactionID string          `json:"transaction_id" validate:"required,max=255"`
	PaymentType   PaymentType     `json:"payment_type" validate:"omitempty,oneof=workbook corporate_payment subscription other"`
	WorkbookID    *int64          `json:"workbook"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ContactMethod is how a CRM contact happened
type ContactMethod string

const (
	ContactEmail ContactMethod = "EMAIL"
	ContactPhone ContactMethod = "PHONE"
)

// CRMContactLog records an outreach to a corporate partner
type CRMContactLog struct {
	ID                 int64         `json:"id"`
	CorporatePartnerID int64         `json:"corporate_partner" validate:"required"`
	ContactMethod      ContactMethod `json:"contact_method" validate:"required,oneof=EMAIL PHONE"`
	Notes              string        `json:"notes"`
	Timestamp          time.Time     `json:"timestamp"`
}
