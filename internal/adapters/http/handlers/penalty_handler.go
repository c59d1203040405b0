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

// PenaltyHandler handles sanction endpoints. Penalties are only ever created
// by the deadline scheduler, so the surface here is read, appeal and resolve.
type PenaltyHandler struct {
	penaltyService  *services.PenaltyService
	standingService *services.AccountStandingService
	authService     *services.AuthService
}

// AppealRequest is the pharmacy's written objection to a penalty
type AppealRequest struct {
	Reason string `json:"reason"`
}

// ResolvePenaltyRequest carries the administrator's resolution note
type ResolvePenaltyRequest struct {
	Note string `json:"note"`
}

// NewPenaltyHandler creates a new penalty handler
func NewPenaltyHandler(penaltyService *services.PenaltyService, standingService *services.AccountStandingService, authService *services.AuthService) *PenaltyHandler {
	return &PenaltyHandler{
		penaltyService:  penaltyService,
		standingService: standingService,
		authService:     authService,
	}
}

// ListMine lists the calling pharmacy's penalties
func (h *PenaltyHandler) ListMine(c *fiber.Ctx) error {
	pharmacy, err := h.authService.PharmacyFor(c.Context(), userID(c))
	if err != nil {
		return response.Forbidden(c, "No pharmacy profile for this account")
	}

	params := pagination.GetParams(c)
	penalties, total, err := h.penaltyService.ListByPharmacy(c.Context(), pharmacy.ID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list penalties")
	}

	items := make([]*models.PenaltyResponse, 0, len(penalties))
	for _, penalty := range penalties {
		items = append(items, penalty.ToResponse())
	}
	return response.Success(c, "Penalties retrieved", pagination.NewResponse(items, params, total))
}

// Get returns one penalty; admin surface
func (h *PenaltyHandler) Get(c *fiber.Ctx) error {
	penaltyID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid penalty id")
	}

	penalty, err := h.penaltyService.GetByID(c.Context(), penaltyID)
	if err != nil {
		if errors.Is(err, services.ErrPenaltyNotFound) {
			return response.NotFound(c, "Penalty not found")
		}
		return response.InternalServerError(c, "Failed to load penalty")
	}

	return response.Success(c, "Penalty retrieved", penalty.ToResponse())
}

// Appeal records the pharmacy's objection on an active penalty
func (h *PenaltyHandler) Appeal(c *fiber.Ctx) error {
	penaltyID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid penalty id")
	}

	var req AppealRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	pharmacy, err := h.authService.PharmacyFor(c.Context(), userID(c))
	if err != nil {
		return response.Forbidden(c, "No pharmacy profile for this account")
	}

	penalty, err := h.penaltyService.SubmitAppeal(c.Context(), penaltyID, pharmacy.ID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPenaltyNotFound):
			return response.NotFound(c, "Penalty not found")
		case errors.Is(err, services.ErrNotAuthorized):
			return response.Forbidden(c, "Penalty belongs to another pharmacy")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Appeal reason is required")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.UnprocessableEntity(c, "Only an active penalty can be appealed")
		default:
			return response.InternalServerError(c, "Failed to submit appeal")
		}
	}

	return response.Success(c, "Appeal submitted", penalty.ToResponse())
}

// Resolve closes a penalty. Resolving a temporary suspension reinstates the
// pharmacy; a permanent suspension stays in force.
func (h *PenaltyHandler) Resolve(c *fiber.Ctx) error {
	penaltyID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid penalty id")
	}

	var req ResolvePenaltyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	penalty, err := h.penaltyService.Resolve(c.Context(), penaltyID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPenaltyNotFound):
			return response.NotFound(c, "Penalty not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Resolution note is required")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.UnprocessableEntity(c, "Penalty is already resolved")
		default:
			return response.InternalServerError(c, "Failed to resolve penalty")
		}
	}

	return response.Success(c, "Penalty resolved", penalty.ToResponse())
}

// Standing reports a pharmacy's account flags and lifetime penalty count;
// admin surface
func (h *PenaltyHandler) Standing(c *fiber.Ctx) error {
	pharmacyID, err := paramID(c, "pharmacy_id")
	if err != nil {
		return response.BadRequest(c, "Invalid pharmacy id")
	}

	isActive, permanentlySuspended, penaltyCount, err := h.standingService.GetStanding(c.Context(), pharmacyID)
	if err != nil {
		if errors.Is(err, services.ErrPharmacyNotFound) {
			return response.NotFound(c, "Pharmacy not found")
		}
		return response.InternalServerError(c, "Failed to load pharmacy standing")
	}

	return response.Success(c, "Pharmacy standing retrieved", fiber.Map{
		"pharmacy_id":           pharmacyID,
		"is_active":             isActive,
		"permanently_suspended": permanentlySuspended,
		"penalty_count":         penaltyCount,
	})
}

// Reinstate lifts a temporary suspension; permanent suspensions are refused
func (h *PenaltyHandler) Reinstate(c *fiber.Ctx) error {
	pharmacyID, err := paramID(c, "pharmacy_id")
	if err != nil {
		return response.BadRequest(c, "Invalid pharmacy id")
	}

	if err := h.standingService.Reinstate(c.Context(), pharmacyID); err != nil {
		switch {
		case errors.Is(err, services.ErrPharmacyNotFound):
			return response.NotFound(c, "Pharmacy not found")
		case errors.Is(err, services.ErrPermanentlySuspended):
			return response.UnprocessableEntity(c, "A permanent suspension cannot be lifted")
		default:
			return response.InternalServerError(c, "Failed to reinstate pharmacy")
		}
	}

	return response.Success(c, "Pharmacy reinstated", fiber.Map{"pharmacy_id": pharmacyID})
}
