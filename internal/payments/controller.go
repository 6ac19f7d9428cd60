package payments

import (
	"errors"
	"log/slog"
	"net/http"

	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/shared/utils/response"
	"engracedsmile/pkg/logger"
	"engracedsmile/pkg/paystack"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const verificationFailedMessage = "payment verification failed, contact support"

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Checkout handles POST /payments/checkout
func (c *Controller) Checkout(ctx *gin.Context) {
	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	id, err := uuid.Parse(req.BookingID)
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	cfg, err := c.service.StartCheckout(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err, "Failed to start checkout")
		return
	}
	response.Success(ctx, http.StatusOK, "Checkout ready", cfg)
}

// Verify handles POST /payments/verify from the checkout success callback
func (c *Controller) Verify(ctx *gin.Context) {
	var req VerifyPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Reference == "" || req.BookingID == "" {
		ctx.JSON(http.StatusBadRequest, VerifyPaymentResponse{Message: "Missing required parameters"})
		return
	}

	outcome, err := c.service.VerifyPayment(ctx.Request.Context(), req.Reference, req.BookingID)
	if err != nil {
		var validation *apperrors.ValidationError
		switch {
		case errors.As(err, &validation):
			ctx.JSON(http.StatusBadRequest, VerifyPaymentResponse{Message: validation.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			ctx.JSON(http.StatusNotFound, VerifyPaymentResponse{Message: "Booking not found"})
		default:
			logger.GetDefault().ErrorContext(ctx.Request.Context(), "payment verification error",
				slog.String("payment_reference", req.Reference),
				slog.Any("error", err),
			)
			ctx.JSON(http.StatusInternalServerError, VerifyPaymentResponse{Message: verificationFailedMessage})
		}
		return
	}

	switch outcome.Result {
	case ResultConfirmed, ResultAlreadyConfirmed:
		ctx.JSON(http.StatusOK, VerifyPaymentResponse{
			Success:   true,
			Message:   "Payment verified successfully",
			Reference: req.Reference,
		})
	case ResultRefunded, ResultRefundPending:
		ctx.JSON(http.StatusConflict, VerifyPaymentResponse{
			Message:   "Payment received but the booking could not be confirmed, a refund has been initiated",
			Reference: req.Reference,
		})
	case ResultPending:
		ctx.JSON(http.StatusBadRequest, VerifyPaymentResponse{Message: "Payment is still processing"})
	default:
		ctx.JSON(http.StatusBadRequest, VerifyPaymentResponse{Message: "Payment verification failed"})
	}
}

// Webhook handles POST /payments/webhook. The signature is checked against
// the exact bytes received.
func (c *Controller) Webhook(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	log := logger.GetDefault()

	signature := ctx.GetHeader(paystack.SignatureHeader)
	if signature == "" {
		log.LogWebhookRejected(reqCtx, "missing signature", ctx.ClientIP())
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing signature"})
		return
	}
	body, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
		return
	}

	outcome, err := c.service.HandleWebhook(reqCtx, body, signature)
	if err != nil {
		if errors.Is(err, apperrors.ErrSignatureInvalid) {
			log.LogWebhookRejected(reqCtx, "invalid signature", ctx.ClientIP())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
		log.ErrorContext(reqCtx, "webhook processing failed", slog.Any("error", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	attrs := []any{slog.String("result", string(outcome.Result))}
	if outcome.Booking != nil {
		attrs = append(attrs, slog.String("booking_reference", outcome.Booking.BookingReference))
	}
	if outcome.Reason != "" {
		attrs = append(attrs, slog.String("reason", outcome.Reason))
	}
	log.InfoContext(reqCtx, "webhook processed", attrs...)
	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

