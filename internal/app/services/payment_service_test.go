package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/app/polyref"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
)

type PaymentServiceSuite struct {
	platformSuite
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) checkoutWorkbook(price float64) (*models.Workbook, *dto.CheckoutResponse) {
	workbook := s.workbook(price)
	resp, err := s.payments.CreateCheckout(s.ctx, s.parent, &dto.CheckoutRequest{
		PaymentType: models.PaymentTypeWorkbook,
		WorkbookID:  &workbook.ID,
	})
	s.Require().NoError(err)
	return workbook, resp
}

func (s *PaymentServiceSuite) TestCheckoutRecordsPendingTransaction() {
	workbook, resp := s.checkoutWorkbook(12.5)
	s.NotEmpty(resp.SessionID)
	s.Contains(resp.URL, resp.SessionID)

	txn, err := s.stores.PaymentTransactions.Get(s.ctx, repositories.All(), resp.TransactionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentPending, txn.Status)
	s.Equal(models.ProviderStripe, txn.Provider)
	s.Equal("GBP", txn.Currency)
	s.Equal(12.5, txn.Amount)
	s.Equal(resp.SessionID, txn.TransactionID)
	s.Require().NotNil(txn.WorkbookID)
	s.Equal(workbook.ID, *txn.WorkbookID)
	s.Require().NotNil(txn.UserID)
	s.Equal(s.parent.UserID, *txn.UserID)
}

func (s *PaymentServiceSuite) TestCheckoutValidation() {
	missing := int64(9999)
	_, err := s.payments.CreateCheckout(s.ctx, s.parent, &dto.CheckoutRequest{PaymentType: models.PaymentTypeWorkbook, WorkbookID: &missing})
	s.ErrorIs(err, apperrors.ErrResourceNotFound)

	_, err = s.payments.CreateCheckout(s.ctx, s.parent, &dto.CheckoutRequest{PaymentType: models.PaymentTypeWorkbook})
	s.requireFieldError(err, "workbook_id")

	_, err = s.payments.CreateCheckout(s.ctx, s.partner, &dto.CheckoutRequest{PaymentType: models.PaymentTypeCorporatePayment})
	s.requireFieldError(err, "amount")

	_, err = s.payments.CreateCheckout(s.ctx, s.partner, &dto.CheckoutRequest{PaymentType: "gift"})
	s.requireFieldError(err, "payment_type")

	resp, err := s.payments.CreateCheckout(s.ctx, s.partner, &dto.CheckoutRequest{
		PaymentType: models.PaymentTypeCorporatePayment,
		Amount:      500,
		Currency:    "usd",
	})
	s.Require().NoError(err)
	txn, err := s.stores.PaymentTransactions.Get(s.ctx, repositories.All(), resp.TransactionID)
	s.Require().NoError(err)
	s.Equal("USD", txn.Currency)
	s.Nil(txn.WorkbookID)
}

func (s *PaymentServiceSuite) TestCheckoutGatewayFailureIsBadRequest() {
	s.gateway.FailNext("Invalid API Key provided")
	_, err := s.payments.CreateCheckout(s.ctx, s.partner, &dto.CheckoutRequest{
		PaymentType: models.PaymentTypeOther,
		Amount:      5,
	})
	s.ErrorIs(err, apperrors.ErrGateway)
	s.EqualError(err, "Invalid API Key provided")
}

func (s *PaymentServiceSuite) TestVerifyPendingThenPaid() {
	workbook, checkout := s.checkoutWorkbook(10)

	pending, err := s.payments.Verify(s.ctx, s.parent, checkout.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentPending, pending.Status)
	s.Nil(pending.Purchase)

	s.Require().True(s.gateway.MarkPaid(checkout.SessionID))

	paid, err := s.payments.Verify(s.ctx, s.parent, checkout.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentSucceeded, paid.Status)
	s.Equal(checkout.TransactionID, paid.TransactionID)
	s.Require().NotNil(paid.Purchase)
	s.Equal(workbook.ID, paid.Purchase.WorkbookID)
	s.Equal(models.PurchasePaid, paid.Purchase.PaymentStatus)
	s.Equal(checkout.SessionID, paid.Purchase.TransactionID)
	s.Equal(polyref.Ref{Kind: polyref.KindParentProfile, ID: s.parentProfile.ID}, paid.Purchase.Purchaser)
	s.Require().NotNil(paid.Purchase.PurchaserInfo)
	s.Equal("parent@test.com", paid.Purchase.PurchaserInfo.Display)
}

func (s *PaymentServiceSuite) TestVerifyIsIdempotent() {
	_, checkout := s.checkoutWorkbook(10)
	s.Require().True(s.gateway.MarkPaid(checkout.SessionID))

	first, err := s.payments.Verify(s.ctx, s.parent, checkout.SessionID)
	s.Require().NoError(err)
	second, err := s.payments.Verify(s.ctx, s.parent, checkout.SessionID)
	s.Require().NoError(err)

	s.Equal(first.Purchase.ID, second.Purchase.ID)
	_, total, err := s.stores.WorkbookPurchases.List(s.ctx, repositories.All(), repositories.Page{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
}

func (s *PaymentServiceSuite) TestVerifySchoolPurchaser() {
	workbook := s.workbook(8)
	checkout, err := s.payments.CreateCheckout(s.ctx, s.school, &dto.CheckoutRequest{
		PaymentType: models.PaymentTypeWorkbook,
		WorkbookID:  &workbook.ID,
	})
	s.Require().NoError(err)
	s.Require().True(s.gateway.MarkPaid(checkout.SessionID))

	paid, err := s.payments.Verify(s.ctx, s.school, checkout.SessionID)
	s.Require().NoError(err)
	s.Equal(polyref.Ref{Kind: polyref.KindSchoolProfile, ID: s.schoolProfile.ID}, paid.Purchase.Purchaser)
	s.Equal("Riverside", paid.Purchase.PurchaserInfo.Display)

	items, _, err := s.catalog.WorkbookPurchases.List(s.ctx, s.school, 1, 10)
	s.Require().NoError(err)
	s.Len(items, 1)
	items, _, err = s.catalog.WorkbookPurchases.List(s.ctx, s.parent, 1, 10)
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *PaymentServiceSuite) TestVerifyWithoutPurchaserProfile() {
	workbook := s.workbook(8)
	checkout, err := s.payments.CreateCheckout(s.ctx, s.student, &dto.CheckoutRequest{
		PaymentType: models.PaymentTypeWorkbook,
		WorkbookID:  &workbook.ID,
	})
	s.Require().NoError(err)
	s.Require().True(s.gateway.MarkPaid(checkout.SessionID))

	_, err = s.payments.Verify(s.ctx, s.student, checkout.SessionID)
	s.requireFieldError(err, "purchaser")

	_, total, err := s.stores.WorkbookPurchases.List(s.ctx, repositories.All(), repositories.Page{})
	s.Require().NoError(err)
	s.Equal(int64(0), total)
}

func (s *PaymentServiceSuite) TestVerifyExpiredSessionFails() {
	_, checkout := s.checkoutWorkbook(10)
	s.Require().True(s.gateway.Expire(checkout.SessionID))

	resp, err := s.payments.Verify(s.ctx, s.parent, checkout.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentFailed, resp.Status)
	s.Nil(resp.Purchase)
}

func (s *PaymentServiceSuite) TestVerifyOtherUsersTransactionIsNotFound() {
	_, checkout := s.checkoutWorkbook(10)

	_, err := s.payments.Verify(s.ctx, s.school, checkout.SessionID)
	s.ErrorIs(err, apperrors.ErrResourceNotFound)

	_, err = s.payments.Verify(s.ctx, s.parent, "cs_test_unknown")
	s.ErrorIs(err, apperrors.ErrResourceNotFound)
}
