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

// ContractHandler handles contract endpoints. Every response goes through
// ToResponse, which blanks counterparty contact details unless the contract
// is active or completed.
type ContractHandler struct {
	contractService *services.ContractService
	authService     *services.AuthService
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *services.ContractService, authService *services.AuthService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		authService:     authService,
	}
}

// Get returns one contract, visible only to its parties and admins
func (h *ContractHandler) Get(c *fiber.Ctx) error {
	contractID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	contract, err := h.contractService.GetByID(c.Context(), contractID)
	if err != nil {
		if errors.Is(err, services.ErrContractNotFound) {
			return response.NotFound(c, "Contract not found")
		}
		return response.InternalServerError(c, "Failed to load contract")
	}

	if !h.isParty(c, contract) {
		return response.Forbidden(c, "Not a party to this contract")
	}

	return response.Success(c, "Contract retrieved", contract.ToResponse())
}

// ListMine lists the caller's contracts, resolved by role
func (h *ContractHandler) ListMine(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	role, _ := c.Locals("role").(string)

	var (
		contracts []*models.Contract
		total     int64
		err       error
	)

	switch role {
	case models.RolePharmacy:
		pharmacy, perr := h.authService.PharmacyFor(c.Context(), userID(c))
		if perr != nil {
			return response.Forbidden(c, "No pharmacy profile for this account")
		}
		contracts, total, err = h.contractService.ListByPharmacy(c.Context(), pharmacy.ID, params.Offset, params.Limit)
	case models.RolePharmacist:
		pharmacist, perr := h.authService.PharmacistFor(c.Context(), userID(c))
		if perr != nil {
			return response.Forbidden(c, "No pharmacist profile for this account")
		}
		contracts, total, err = h.contractService.ListByPharmacist(c.Context(), pharmacist.ID, params.Offset, params.Limit)
	default:
		return response.Forbidden(c, "Only contract parties can list their contracts")
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list contracts")
	}

	items := make([]*models.ContractResponse, 0, len(contracts))
	for _, contract := range contracts {
		items = append(items, contract.ToResponse())
	}
	return response.Success(c, "Contracts retrieved", pagination.NewResponse(items, params, total))
}

// Approve is the pharmacist accepting the offer terms
func (h *ContractHandler) Approve(c *fiber.Ctx) error {
	contractID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	pharmacist, err := h.authService.PharmacistFor(c.Context(), userID(c))
	if err != nil {
		return response.Forbidden(c, "No pharmacist profile for this account")
	}

	contract, err := h.contractService.Approve(c.Context(), contractID, pharmacist.ID)
	if err != nil {
		return contractError(c, err, "Failed to approve contract")
	}

	return response.Success(c, "Contract approved, awaiting payment", contract.ToResponse())
}

// Reject is the pharmacist declining the offer
func (h *ContractHandler) Reject(c *fiber.Ctx) error {
	contractID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	pharmacist, err := h.authService.PharmacistFor(c.Context(), userID(c))
	if err != nil {
		return response.Forbidden(c, "No pharmacist profile for this account")
	}

	contract, err := h.contractService.RejectOffer(c.Context(), contractID, pharmacist.ID)
	if err != nil {
		return contractError(c, err, "Failed to reject contract")
	}

	return response.Success(c, "Contract rejected", contract.ToResponse())
}

// Complete closes an active contract; admin surface, the completion sweep
// handles the normal case
func (h *ContractHandler) Complete(c *fiber.Ctx) error {
	contractID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	contract, err := h.contractService.Complete(c.Context(), contractID)
	if err != nil {
		return contractError(c, err, "Failed to complete contract")
	}

	return response.Success(c, "Contract completed", contract.ToResponse())
}

func (h *ContractHandler) isParty(c *fiber.Ctx, contract *models.Contract) bool {
	role, _ := c.Locals("role").(string)
	switch role {
	case models.RoleAdmin:
		return true
	case models.RolePharmacy:
		pharmacy, err := h.authService.PharmacyFor(c.Context(), userID(c))
		return err == nil && pharmacy.ID == contract.PharmacyID
	case models.RolePharmacist:
		pharmacist, err := h.authService.PharmacistFor(c.Context(), userID(c))
		return err == nil && pharmacist.ID == contract.PharmacistID
	}
	return false
}

func contractError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrContractNotFound):
		return response.NotFound(c, "Contract not found")
	case errors.Is(err, services.ErrNotAuthorized):
		return response.Forbidden(c, "Not a party to this contract")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.UnprocessableEntity(c, "Contract is not in a state that allows this action")
	default:
		return response.InternalServerError(c, fallback)
	}
}
