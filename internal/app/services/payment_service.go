package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/app/polyref"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/logger"
	"github.com/aaeducates/backend/internal/pkg/metrics"
	"github.com/aaeducates/backend/internal/pkg/payments"
	"github.com/rs/zerolog"
)

// DefaultCurrency is used when neither the request nor the configuration names one
const DefaultCurrency = "GBP"

// PaymentConfig carries checkout defaults
type PaymentConfig struct {
	Currency    string
	FrontendURL string
}

// PaymentService creates checkout sessions and reconciles them into transactions and purchases
type PaymentService struct {
	transactions repositories.Store[models.PaymentTransaction]
	purchases    repositories.Store[models.WorkbookPurchase]
	workbooks    repositories.Store[models.Workbook]
	defaults     profileDefaults
	resolver     *polyref.Resolver
	gateway      payments.Gateway
	config       PaymentConfig
	metrics      *metrics.Metrics
	logger       zerolog.Logger

	// verifyMu serialises reconciliation so a purchase is materialised once
	verifyMu sync.Mutex
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	stores *repositories.Stores,
	dir *repositories.ProfileDirectory,
	resolver *polyref.Resolver,
	gateway payments.Gateway,
	config PaymentConfig,
	m *metrics.Metrics,
) *PaymentService {
	if config.Currency == "" {
		config.Currency = DefaultCurrency
	}
	return &PaymentService{
		transactions: stores.PaymentTransactions,
		purchases:    stores.WorkbookPurchases,
		workbooks:    stores.Workbooks,
		defaults:     profileDefaults{dir: dir},
		resolver:     resolver,
		gateway:      gateway,
		config:       config,
		metrics:      m,
		logger:       logger.Component("payments"),
	}
}

// CreateCheckout opens a hosted checkout and records a PENDING transaction for it
func (s *PaymentService) CreateCheckout(ctx context.Context, actor *authz.Actor, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if !actor.Authenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	if !req.PaymentType.IsValid() {
		return nil, apperrors.NewValidationError("payment_type",
			fmt.Sprintf("\"%s\" is not a valid choice.", req.PaymentType))
	}

	params := payments.CheckoutParams{
		Amount:      req.Amount,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		ProductName: productName(req.PaymentType),
		Description: req.Description,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		Metadata: map[string]string{
			"user_id":      strconv.FormatInt(actor.UserID, 10),
			"payment_type": string(req.PaymentType),
		},
	}
	if req.Details != "" {
		params.Metadata["details"] = req.Details
	}
	if params.Currency == "" {
		params.Currency = s.config.Currency
	}

	var workbookID *int64
	if req.PaymentType == models.PaymentTypeWorkbook {
		if req.WorkbookID == nil {
			return nil, apperrors.NewValidationError("workbook_id", "This field is required.")
		}
		workbook, err := s.workbooks.Get(ctx, repositories.All(), *req.WorkbookID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return nil, apperrors.NewResourceNotFoundError("Workbook not found")
			}
			return nil, err
		}
		workbookID = &workbook.ID
		params.Amount = workbook.Price
		params.ProductName = workbook.Title
		if params.Description == "" {
			params.Description = workbook.Description
		}
		params.Metadata["workbook_id"] = strconv.FormatInt(workbook.ID, 10)
	} else if req.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount", "Amount must be greater than zero.")
	}

	if params.SuccessURL == "" {
		params.SuccessURL = s.config.FrontendURL + "/payments/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if params.CancelURL == "" {
		params.CancelURL = s.config.FrontendURL + "/payments/cancel"
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, s.gatewayError(err, "create checkout session")
	}

	userID := actor.UserID
	txn := &models.PaymentTransaction{
		UserID:        &userID,
		Provider:      models.ProviderStripe,
		Amount:        params.Amount,
		Currency:      params.Currency,
		Status:        models.PaymentPending,
		TransactionID: session.ID,
		PaymentType:   req.PaymentType,
		WorkbookID:    workbookID,
		Description:   params.Description,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}

	s.metrics.IncrementCheckouts(string(req.PaymentType))
	s.logger.Info().Int64("userID", actor.UserID).Int64("transactionID", txn.ID).
		Str("sessionID", session.ID).Str("paymentType", string(req.PaymentType)).Msg("Checkout session created")

	return &dto.CheckoutResponse{
		SessionID:     session.ID,
		URL:           session.URL,
		TransactionID: txn.ID,
	}, nil
}

// Verify asks the gateway for the session state and records it. The first
// transition of a workbook payment to SUCCEEDED creates exactly one purchase.
func (s *PaymentService) Verify(ctx context.Context, actor *authz.Actor, sessionID string) (*dto.VerifyPaymentResponse, error) {
	if !actor.Authenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.NewValidationError("session_id", "This field is required.")
	}

	s.verifyMu.Lock()
	defer s.verifyMu.Unlock()

	txn, err := s.transactions.FindOne(ctx, repositories.Where("transaction_id", sessionID))
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("Transaction not found")
		}
		return nil, err
	}
	if !actor.IsAdmin() && (txn.UserID == nil || *txn.UserID != actor.UserID) {
		return nil, apperrors.NewResourceNotFoundError("Transaction not found")
	}

	status, gatewayErr := s.sessionStatus(ctx, sessionID)
	if gatewayErr != nil && status == "" {
		return nil, gatewayErr
	}

	var purchase *models.WorkbookPurchase
	if status == models.PaymentSucceeded && txn.PaymentType == models.PaymentTypeWorkbook && txn.WorkbookID != nil {
		if purchase, err = s.materializePurchase(ctx, actor, txn); err != nil {
			return nil, err
		}
	}

	// A transaction that already succeeded never moves back
	if txn.Status != status && txn.Status != models.PaymentSucceeded {
		previous := txn.Status
		txn.Status = status
		if err := s.transactions.Update(ctx, txn); err != nil {
			return nil, err
		}
		s.logger.Info().Int64("transactionID", txn.ID).Str("from", string(previous)).
			Str("to", string(status)).Msg("Payment status changed")
	}

	if gatewayErr != nil {
		return nil, gatewayErr
	}

	return &dto.VerifyPaymentResponse{
		Status:        txn.Status,
		TransactionID: txn.ID,
		Message:       statusMessage(txn.Status),
		Transaction:   txn,
		Purchase:      purchase,
	}, nil
}

// sessionStatus maps the gateway view of a session onto a transaction status.
// A failure reported by the provider maps to FAILED and is returned alongside.
func (s *PaymentService) sessionStatus(ctx context.Context, sessionID string) (models.PaymentStatus, error) {
	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		if _, ok := payments.AsError(err); ok || errors.Is(err, payments.ErrSessionNotFound) {
			return models.PaymentFailed, s.gatewayError(err, "retrieve checkout session")
		}
		return "", s.gatewayError(err, "retrieve checkout session")
	}

	switch {
	case session.PaymentStatus == payments.PaymentPaid:
		return models.PaymentSucceeded, nil
	case session.Status == payments.StatusExpired:
		return models.PaymentFailed, nil
	default:
		return models.PaymentPending, nil
	}
}

// materializePurchase returns the purchase recorded for txn, creating it on first success
func (s *PaymentService) materializePurchase(ctx context.Context, actor *authz.Actor, txn *models.PaymentTransaction) (*models.WorkbookPurchase, error) {
	purchase, err := s.purchases.FindOne(ctx, repositories.Where("transaction_id", txn.TransactionID))
	if err == nil {
		return s.decoratePurchase(ctx, purchase)
	}
	if !repositories.IsNotFound(err) {
		return nil, err
	}

	purchaser, err := s.defaults.purchaser(ctx, actor)
	if err != nil {
		return nil, err
	}

	purchase = &models.WorkbookPurchase{
		WorkbookID:    *txn.WorkbookID,
		Purchaser:     purchaser,
		PaymentStatus: models.PurchasePaid,
		TransactionID: txn.TransactionID,
	}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		return nil, err
	}

	s.metrics.IncrementWorkbookPurchases()
	s.logger.Info().Int64("purchaseID", purchase.ID).Int64("workbookID", purchase.WorkbookID).
		Str("purchaser", purchaser.String()).Msg("Workbook purchase recorded")

	return s.decoratePurchase(ctx, purchase)
}

func (s *PaymentService) decoratePurchase(ctx context.Context, p *models.WorkbookPurchase) (*models.WorkbookPurchase, error) {
	target, err := s.resolver.ResolveOptional(ctx, p.Purchaser)
	if err != nil {
		return nil, err
	}
	p.PurchaserInfo = target
	return p, nil
}

// gatewayError turns provider failures into 400s and keeps local faults as 500s
func (s *PaymentService) gatewayError(err error, op string) error {
	if pe, ok := payments.AsError(err); ok {
		s.logger.Warn().Err(err).Str("op", op).Msg("Payment provider rejected request")
		return apperrors.NewGatewayError(pe.Message)
	}
	if errors.Is(err, payments.ErrSessionNotFound) {
		return apperrors.NewGatewayError("No such checkout session")
	}
	s.logger.Error().Err(err).Str("op", op).Msg("Payment provider call failed")
	return fmt.Errorf("failed to %s: %w", op, err)
}

func productName(t models.PaymentType) string {
	switch t {
	case models.PaymentTypeCorporatePayment:
		return "Corporate payment"
	case models.PaymentTypeSubscription:
		return "Subscription"
	case models.PaymentTypeWorkbook:
		return "Workbook"
	default:
		return "Payment"
	}
}

func statusMessage(status models.PaymentStatus) string {
	switch status {
	case models.PaymentSucceeded:
		return "Payment verified successfully"
	case models.PaymentFailed:
		return "Payment failed"
	default:
		return "Payment is still pending"
	}
}
