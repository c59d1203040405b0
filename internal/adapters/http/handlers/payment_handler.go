package handlers

import (
	"errors"

	"pharmatch/internal/core/domain"
	"pharmatch/internal/core/services"
	"pharmatch/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles platform-fee payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
	authService    *services.AuthService
}

// ConfirmPaymentRequest carries the administrator's verification note
type ConfirmPaymentRequest struct {
	Note string `json:"note,omitempty"`
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, authService *services.AuthService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		authService:    authService,
	}
}

// GetByContract returns the payment attached to a contract
func (h *PaymentHandler) GetByContract(c *fiber.Ctx) error {
	contractID, err := paramID(c, "contract_id")
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	payment, err := h.paymentService.GetByContractID(c.Context(), contractID)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return response.NotFound(c, "Payment not found")
		}
		return response.InternalServerError(c, "Failed to load payment")
	}

	return response.Success(c, "Payment retrieved", payment.ToResponse())
}

// Report records the pharmacy's bank-transfer report
func (h *PaymentHandler) Report(c *fiber.Ctx) error {
	paymentID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid payment id")
	}

	var req services.ReportPaymentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	pharmacy, err := h.authService.PharmacyFor(c.Context(), userID(c))
	if err != nil {
		return response.Forbidden(c, "No pharmacy profile for this account")
	}

	payment, err := h.paymentService.Report(c.Context(), paymentID, pharmacy.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "payment_date and transfer_name are required")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.UnprocessableEntity(c, "Payment has already been reported or is no longer pending")
		default:
			return paymentError(c, err, "Failed to report payment")
		}
	}

	return response.Success(c, "Payment reported, awaiting confirmation", payment.ToResponse())
}

// Confirm is the administrator verifying the transfer and activating the
// contract
func (h *PaymentHandler) Confirm(c *fiber.Ctx) error {
	paymentID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid payment id")
	}

	var req ConfirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment, err := h.paymentService.Confirm(c.Context(), paymentID, req.Note)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return response.UnprocessableEntity(c, "Payment must be in reported status to confirm")
		}
		return paymentError(c, err, "Failed to confirm payment")
	}

	return response.Success(c, "Payment confirmed, contract activated", payment.ToResponse())
}

// ResetReport clears a mistaken report so the pharmacy can resubmit
func (h *PaymentHandler) ResetReport(c *fiber.Ctx) error {
	paymentID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid payment id")
	}

	payment, err := h.paymentService.ResetReport(c.Context(), paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return response.UnprocessableEntity(c, "Only a reported payment can be reset")
		}
		return paymentError(c, err, "Failed to reset payment report")
	}

	return response.Success(c, "Payment report cleared", payment.ToResponse())
}

func paymentError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrPaymentNotFound):
		return response.NotFound(c, "Payment not found")
	case errors.Is(err, services.ErrNotAuthorized):
		return response.Forbidden(c, "Not a party to this payment")
	default:
		return response.InternalServerError(c, fallback)
	}
}
