package handlers

import (
	"errors"

	"loanlink-api/internal/adapters/http/middleware"
	"loanlink-api/internal/core/domain"
	"loanlink-api/internal/core/services"
	"loanlink-api/internal/pkg/pagination"
	"loanlink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles checkout and payment reconciliation endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CheckoutRequest represents a checkout session request body
type CheckoutRequest struct {
	ApplicationID uint `json:"application_id"`
}

// CreateCheckoutSession opens a hosted checkout session
// @Summary Create checkout session
// @Description Open a hosted checkout session for an application's processing fee
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CheckoutRequest true "Application to pay for"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /payment-checkout-session [post]
func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	email, ok := c.Locals(middleware.LocalPrincipalEmail).(string)
	if !ok || email == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ApplicationID == 0 {
		return response.BadRequest(c, "Application ID is required")
	}

	out, err := h.paymentService.CreateCheckoutSession(c.Context(), req.ApplicationID, email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrNotApplicationOwner):
			return response.Forbidden(c, "Unauthorized Access")
		case errors.Is(err, services.ErrFeeAlreadyPaid):
			return response.Conflict(c, "Application fee already paid")
		case errors.Is(err, services.ErrUpstreamUnavailable):
			return response.BadGateway(c, "Payment service unavailable")
		default:
			return response.InternalServerError(c, "Failed to create checkout session")
		}
	}

	return c.JSON(fiber.Map{
		"url": out.URL,
	})
}

// PaymentSuccess reconciles a completed checkout session
// @Summary Confirm payment
// @Description Callback hit after checkout; verifies the session with the
// processor, records the payment once and marks the application fee Paid.
// Safe to call any number of times for the same session.
// @Tags Payments
// @Produce json
// @Param session_id query string true "Checkout session reference"
// @Success 200 {object} services.ConfirmResult
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /payment-success [patch]
func (h *PaymentHandler) PaymentSuccess(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")

	result, err := h.paymentService.ConfirmPayment(c.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "session_id is required")
		case errors.Is(err, services.ErrSessionNotFound):
			return response.NotFound(c, "Checkout session not found")
		case errors.Is(err, services.ErrUpstreamUnavailable):
			return response.BadGateway(c, "Payment service unavailable")
		default:
			return response.InternalServerError(c, "Failed to confirm payment")
		}
	}

	return c.JSON(result)
}

// ListMine lists the requesting user's payments
// @Summary List my payments
// @Description List payments filtered by the email query parameter; the
// email must match the authenticated user
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param email query string false "Customer email"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) ListMine(c *fiber.Ctx) error {
	email, ok := c.Locals(middleware.LocalPrincipalEmail).(string)
	if !ok || email == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	payments, err := h.paymentService.ListByEmail(c.Context(), email)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved successfully", fiber.Map{
		"payments": payments,
	})
}

// ListAll lists all payments (Admin)
// @Summary List all payments
// @Description List all recorded payments with pagination (Admin only)
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /payments/all [get]
func (h *PaymentHandler) ListAll(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	payments, total, err := h.paymentService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved successfully",
		pagination.NewResponse(payments, params, total))
}
