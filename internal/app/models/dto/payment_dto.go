package dto

import "github.com/aaeducates/backend/internal/app/models"

// CheckoutRequest starts a hosted checkout
type CheckoutRequest struct {
	PaymentType models.PaymentType `json:"payment_type" example:"workbook"`
	WorkbookID  *int64             `json:"workbook_id,omitempty" example:"1"`
	Amount      float64            `json:"amount,omitempty" example:"25.00"`
	Currency    string             `json:"currency,omitempty" example:"GBP"`
	Description string             `json:"description,omitempty"`
	Details     string             `json:"details,omitempty"`
	SuccessURL  string             `json:"success_url,omitempty"`
	CancelURL   string             `json:"cancel_url,omitempty"`
}

// CheckoutResponse points the client at the hosted checkout page
type CheckoutResponse struct {
	SessionID     string `json:"session_id" example:"cs_test_a1b2"`
	URL           string `json:"url" example:"https://checkout.stripe.com/c/pay/cs_test_a1b2"`
	TransactionID int64  `json:"transaction_id" example:"12"`
}

// VerifyPaymentRequest asks for a checkout session to be reconciled
type VerifyPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// VerifyPaymentResponse reports the reconciled transaction
type VerifyPaymentResponse struct {
	Status        models.PaymentStatus       `json:"status" example:"SUCCEEDED"`
	TransactionID int64                      `json:"transaction_id" example:"12"`
	Message       string                     `json:"message" example:"Payment verified"`
	Transaction   *models.PaymentTransaction `json:"transaction"`
	Purchase      *models.WorkbookPurchase   `json:"purchase,omitempty"`
}
