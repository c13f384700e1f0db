package controllers

import (
	"net/http"

	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/app/services"
	"github.com/aaeducates/backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PaymentController handles hosted checkout and its reconciliation
type PaymentController struct {
	paymentService *services.PaymentService
	logger         zerolog.Logger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService *services.PaymentService, logger zerolog.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         logger,
	}
}

// CreateCheckoutSession opens a hosted checkout
// @Summary Create a checkout session
// @Description Opens a hosted checkout with the payment provider and records a PENDING transaction. Workbook payments take their price and title from the workbook.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CheckoutRequest true "Checkout details"
// @Success 200 {object} dto.APIResponse{data=dto.CheckoutResponse} "Checkout session created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or provider error"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Workbook not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments/create-checkout-session [post]
func (c *PaymentController) CreateCheckoutSession(ctx *gin.Context) {
	var req dto.CheckoutRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.paymentService.CreateCheckout(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Checkout session created"))
}

// VerifyPayment reconciles a checkout session
// @Summary Verify a payment
// @Description Asks the provider for the session state and records it. The first success of a workbook payment creates exactly one purchase for the caller's parent or school profile.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.VerifyPaymentRequest true "Checkout session"
// @Success 200 {object} dto.APIResponse{data=dto.VerifyPaymentResponse} "Payment status"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or provider error"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments/verify-payment [post]
func (c *PaymentController) VerifyPayment(ctx *gin.Context) {
	var req dto.VerifyPaymentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.paymentService.Verify(ctx.Request.Context(), middleware.GetActor(ctx), req.SessionID)
	if err != nil {
		c.logger.Warn().Err(err).Str("sessionID", req.SessionID).Msg("Payment verification failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, resp.Message))
}
