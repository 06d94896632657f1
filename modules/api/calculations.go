package api

import (
	"encoding/json"
	"log"
	"strings"

	domain "github.com/example/calculator-api-demo/domain/user"
	"github.com/example/calculator-api-demo/modules/calculation"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// claimsFromContext returns the validated claims stored by AuthMiddleware.
func claimsFromContext(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	return claims, ok
}

// CreateCalculation handles POST /calculations.
func (h *Handlers) CreateCalculation(c *fiber.Ctx) error {
	claims, ok := claimsFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreateCalculationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	calcReq := calculation.CreateCalculationRequest{
		UserID: claims.UserID,
		Type:   req.Type,
		Inputs: req.Inputs,
	}
	var resp calculation.CalculationResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.calcContainer, "create",
		json.Marshal, json.Unmarshal, &calcReq, &resp,
	); err != nil {
		return h.handleCalcError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListCalculations handles GET /calculations.
func (h *Handlers) ListCalculations(c *fiber.Ctx) error {
	claims, ok := claimsFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	calcReq := calculation.ListCalculationsRequest{UserID: claims.UserID}
	var resp calculation.ListCalculationsResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.calcContainer, "list",
		json.Marshal, json.Unmarshal, &calcReq, &resp,
	); err != nil {
		return h.handleCalcError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp.Calculations)
}

// GetCalculation handles GET /calculations/:id.
func (h *Handlers) GetCalculation(c *fiber.Ctx) error {
	claims, ok := claimsFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	calcReq := calculation.GetCalculationRequest{
		ID:     c.Params("id"),
		UserID: claims.UserID,
	}
	var resp calculation.CalculationResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.calcContainer, "get",
		json.Marshal, json.Unmarshal, &calcReq, &resp,
	); err != nil {
		return h.handleCalcError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// UpdateCalculation handles PUT /calculations/:id.
func (h *Handlers) UpdateCalculation(c *fiber.Ctx) error {
	claims, ok := claimsFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateCalculationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	calcReq := calculation.UpdateCalculationRequest{
		ID:     c.Params("id"),
		UserID: claims.UserID,
		Type:   req.Type,
		Inputs: req.Inputs,
	}
	var resp calculation.CalculationResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.calcContainer, "update",
		json.Marshal, json.Unmarshal, &calcReq, &resp,
	); err != nil {
		return h.handleCalcError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// DeleteCalculation handles DELETE /calculations/:id.
func (h *Handlers) DeleteCalculation(c *fiber.Ctx) error {
	claims, ok := claimsFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	calcReq := calculation.DeleteCalculationRequest{
		ID:     c.Params("id"),
		UserID: claims.UserID,
	}
	var resp calculation.DeleteCalculationResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.calcContainer, "delete",
		json.Marshal, json.Unmarshal, &calcReq, &resp,
	); err != nil {
		return h.handleCalcError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// unauthenticated rejects a request that reached a protected handler
// without claims in context.
func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "User not authenticated",
	})
}

// handleCalcError maps calculation service errors to HTTP responses.
func (h *Handlers) handleCalcError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "calculation not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Calculation not found",
		})
	case strings.Contains(errStr, "invalid calculation id"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid calculation id format",
		})
	case strings.Contains(errStr, "unsupported calculation type"),
		strings.Contains(errStr, "requires at least"),
		strings.Contains(errStr, "requires exactly"),
		strings.Contains(errStr, "cannot divide by zero"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: trimServiceError(errStr),
		})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// trimServiceError strips transport wrapping so the client sees only
// the validation message itself.
func trimServiceError(errStr string) string {
	markers := []string{" requires ", "unsupported calculation type", "cannot divide by zero"}
	for _, m := range markers {
		i := strings.Index(errStr, m)
		if i < 0 {
			continue
		}
		start := 0
		if j := strings.LastIndex(errStr[:i], ": "); j >= 0 {
			start = j + 2
		}
		return errStr[start:]
	}
	return errStr
}
