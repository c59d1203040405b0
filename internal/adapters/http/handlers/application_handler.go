package handlers

import (
	"errors"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/core/domain"
	"pharmatch/internal/core/services"
	"pharmatch/internal/pkg/pagination"
	"pharmatch/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles application endpoints
type ApplicationHandler struct {
	applicationService *services.ApplicationService
	authService        *services.AuthService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationService *services.ApplicationService, authService *services.AuthService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		authService:        authService,
	}
}

// ApplyRequest represents an application submission
type ApplyRequest struct {
	JobPostingID uint `json:"job_posting_id"`
}

// RejectApplicationRequest carries the rejection reason shown to the applicant
type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

// Apply submits the authenticated pharmacist's application to a posting
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.JobPostingID == 0 {
		return response.BadRequest(c, "Job posting is required")
	}

	pharmacist, err := h.authService.PharmacistFor(c.Context(), userID(c))
	if err != nil {
		return response.Forbidden(c, "No pharmacist profile for this account")
	}

	app, err := h.applicationService.Apply(c.Context(), req.JobPostingID, pharmacist.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Job posting not found")
		case errors.Is(err, services.ErrPostingNotOpen):
			return response.UnprocessableEntity(c, "Job posting is not open for applications")
		case errors.Is(err, domain.ErrDuplicateApplication):
			return response.Conflict(c, "An open application already exists for this posting")
		default:
			return response.InternalServerError(c, "Failed to submit application")
		}
	}

	return response.Created(c, "Application submitted", app.ToResponse())
}

// ListByPosting lists applications for one of the pharmacy's postings
func (h *ApplicationHandler) ListByPosting(c *fiber.Ctx) error {
	postingID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid posting id")
	}

	pharmacy, err := h.authService.PharmacyFor(c.Context(), userID(c))
	if err != nil {
		return response.Forbidden(c, "No pharmacy profile for this account")
	}

	params := pagination.GetParams(c)
	apps, total, err := h.applicationService.ListByPosting(c.Context(), postingID, pharmacy.ID, params.Offset, params.Limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Job posting not found")
		case errors.Is(err, services.ErrNotAuthorized):
			return response.Forbidden(c, "Posting belongs to another pharmacy")
		default:
			return response.InternalServerError(c, "Failed to list applications")
		}
	}

	items := make([]*models.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, app.ToResponse())
	}
	return response.Success(c, "Applications retrieved", pagination.NewResponse(items, params, total))
}

// Accept accepts an application, creating the contract and its fee invoice
func (h *ApplicationHandler) Accept(c *fiber.Ctx) error {
	applicationID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid application id")
	}

	pharmacy, err := h.authService.PharmacyFor(c.Context(), userID(c))
	if err != nil {
		return response.Forbidden(c, "No pharmacy profile for this account")
	}

	contract, err := h.applicationService.Accept(c.Context(), applicationID, pharmacy.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrNotAuthorized):
			return response.Forbidden(c, "Application belongs to another pharmacy")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.UnprocessableEntity(c, "Application has already been decided")
		case errors.Is(err, domain.ErrDuplicateContract):
			return response.Conflict(c, "A contract already exists for this application")
		case errors.Is(err, domain.ErrAccountSuspended):
			return response.Forbidden(c, "Account is suspended and cannot enter new contracts")
		default:
			return response.InternalServerError(c, "Failed to accept application")
		}
	}

	return response.Created(c, "Application accepted, contract created", contract.ToResponse())
}

// Reject declines an application with a reason
func (h *ApplicationHandler) Reject(c *fiber.Ctx) error {
	applicationID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid application id")
	}

	var req RejectApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	pharmacy, err := h.authService.PharmacyFor(c.Context(), userID(c))
	if err != nil {
		return response.Forbidden(c, "No pharmacy profile for this account")
	}

	app, err := h.applicationService.Reject(c.Context(), applicationID, pharmacy.ID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrNotAuthorized):
			return response.Forbidden(c, "Application belongs to another pharmacy")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.UnprocessableEntity(c, "Application has already been decided")
		default:
			return response.InternalServerError(c, "Failed to reject application")
		}
	}

	return response.Success(c, "Application rejected", app.ToResponse())
}
