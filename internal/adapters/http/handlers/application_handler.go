package handlers

import (
	"errors"
	"strconv"

	"loanlink-api/internal/adapters/http/middleware"
	"loanlink-api/internal/core/services"
	"loanlink-api/internal/pkg/pagination"
	"loanlink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles loan application endpoints
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// UpdateStatusRequest represents a status review request body
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Submit submits a loan application
// @Summary Submit loan application
// @Description Apply for a loan; the application starts Pending with fee Unpaid
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubmitInput true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	email, ok := c.Locals(middleware.LocalPrincipalEmail).(string)
	if !ok || email == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.LoanID == 0 {
		return response.BadRequest(c, "Loan ID is required")
	}
	if input.Amount <= 0 {
		return response.BadRequest(c, "Amount must be positive")
	}

	app, err := h.appService.Submit(c.Context(), email, &input)
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to submit application")
	}

	return response.Created(c, "Application submitted successfully", fiber.Map{
		"application": app,
	})
}

// ListMine lists the requesting user's applications
// @Summary List my applications
// @Description List applications filtered by the email query parameter; the
// email must match the authenticated user
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param email query string false "Applicant email"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /applications [get]
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	email, ok := c.Locals(middleware.LocalPrincipalEmail).(string)
	if !ok || email == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	// The scope middleware already rejected mismatches; absent param means
	// the principal's own records.
	apps, err := h.appService.ListByEmail(c.Context(), email)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", fiber.Map{
		"applications": apps,
	})
}

// ListAll lists all applications (staff)
// @Summary List all applications
// @Description List all loan applications with pagination (Manager or Admin)
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /applications/all [get]
func (h *ApplicationHandler) ListAll(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.appService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully",
		pagination.NewResponse(result.Applications, params, result.Total))
}

// UpdateStatus reviews an application
// @Summary Review application
// @Description Set application status to Approved or Rejected (Manager or Admin)
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body UpdateStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.appService.UpdateStatus(c.Context(), uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid application status")
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		default:
			return response.InternalServerError(c, "Failed to update application")
		}
	}

	return response.Success(c, "Application status updated", fiber.Map{
		"application": app,
	})
}

// Cancel cancels a pending application
// @Summary Cancel application
// @Description Cancel the caller's own pending, unpaid application
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) Cancel(c *fiber.Ctx) error {
	email, ok := c.Locals(middleware.LocalPrincipalEmail).(string)
	if !ok || email == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	if err := h.appService.Cancel(c.Context(), uint(id), email); err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrNotApplicationOwner):
			return response.Forbidden(c, "Unauthorized Access")
		case errors.Is(err, services.ErrApplicationNotPending):
			return response.Conflict(c, "Application can no longer be cancelled")
		default:
			return response.InternalServerError(c, "Failed to cancel application")
		}
	}

	return response.Success(c, "Application cancelled successfully", nil)
}
