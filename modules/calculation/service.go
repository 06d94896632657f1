package calculation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	domain "github.com/example/calculator-api-demo/domain/calculation"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// ErrInvalidID is returned when a calculation ID is not a valid UUID.
var ErrInvalidID = errors.New("invalid calculation id format")

// ErrMissingOwner is returned when a request arrives without a user id.
var ErrMissingOwner = errors.New("user id is required")

const (
	calcKeyPrefix      = "calc:"
	userCalcsKeyPrefix = "user-calcs:"
)

// createCalculation handles the calculation.create service request.
func (m *CalculationModule) createCalculation(ctx context.Context, req CreateCalculationRequest, _ *mono.Msg) (CalculationResponse, error) {
	if req.UserID == "" {
		return CalculationResponse{}, ErrMissingOwner
	}

	typ, err := domain.ParseType(req.Type)
	if err != nil {
		return CalculationResponse{}, err
	}

	result, err := domain.Compute(typ, req.Inputs)
	if err != nil {
		return CalculationResponse{}, err
	}

	calc := &domain.Calculation{
		ID:     uuid.New().String(),
		UserID: req.UserID,
		Type:   string(typ),
		Inputs: req.Inputs,
		Result: result,
	}

	if err := m.repo.Create(calc); err != nil {
		return CalculationResponse{}, fmt.Errorf("failed to save calculation: %w", err)
	}

	m.invalidate(ctx, calc.UserID, calc.ID)

	return toCalculationResponse(calc), nil
}

// getCalculation handles the calculation.get service request.
func (m *CalculationModule) getCalculation(ctx context.Context, req GetCalculationRequest, _ *mono.Msg) (CalculationResponse, error) {
	if req.UserID == "" {
		return CalculationResponse{}, ErrMissingOwner
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return CalculationResponse{}, ErrInvalidID
	}

	if m.cache != nil {
		data, err := m.cache.GetOrLoad(ctx, calcKey(req.UserID, req.ID), func(_ context.Context) (any, error) {
			calc, err := m.repo.FindByID(req.ID, req.UserID)
			if err != nil {
				return nil, err
			}
			return toCalculationResponse(calc), nil
		})
		if err != nil {
			return CalculationResponse{}, err
		}

		var resp CalculationResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return CalculationResponse{}, fmt.Errorf("failed to decode cached calculation: %w", err)
		}
		return resp, nil
	}

	calc, err := m.repo.FindByID(req.ID, req.UserID)
	if err != nil {
		return CalculationResponse{}, err
	}
	return toCalculationResponse(calc), nil
}

// listCalculations handles the calculation.list service request.
func (m *CalculationModule) listCalculations(ctx context.Context, req ListCalculationsRequest, _ *mono.Msg) (ListCalculationsResponse, error) {
	if req.UserID == "" {
		return ListCalculationsResponse{}, ErrMissingOwner
	}

	if m.cache != nil {
		data, err := m.cache.GetOrLoad(ctx, userCalcsKey(req.UserID), func(_ context.Context) (any, error) {
			return m.loadList(req.UserID)
		})
		if err != nil {
			return ListCalculationsResponse{}, err
		}

		var resp ListCalculationsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return ListCalculationsResponse{}, fmt.Errorf("failed to decode cached list: %w", err)
		}
		return resp, nil
	}

	return m.loadList(req.UserID)
}

// updateCalculation handles the calculation.update service request.
// Any change to inputs or type forces recomputation of the result.
func (m *CalculationModule) updateCalculation(ctx context.Context, req UpdateCalculationRequest, _ *mono.Msg) (CalculationResponse, error) {
	if req.UserID == "" {
		return CalculationResponse{}, ErrMissingOwner
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return CalculationResponse{}, ErrInvalidID
	}

	calc, err := m.repo.FindByID(req.ID, req.UserID)
	if err != nil {
		return CalculationResponse{}, err
	}

	if req.Type != nil {
		typ, err := domain.ParseType(*req.Type)
		if err != nil {
			return CalculationResponse{}, err
		}
		calc.Type = string(typ)
	}
	if req.Inputs != nil {
		calc.Inputs = *req.Inputs
	}

	result, err := domain.Compute(domain.Type(calc.Type), calc.Inputs)
	if err != nil {
		return CalculationResponse{}, err
	}
	calc.Result = result

	if err := m.repo.Update(calc); err != nil {
		return CalculationResponse{}, err
	}

	m.invalidate(ctx, calc.UserID, calc.ID)

	// Re-read so the response carries the persisted timestamps.
	updated, err := m.repo.FindByID(calc.ID, calc.UserID)
	if err != nil {
		return CalculationResponse{}, err
	}
	return toCalculationResponse(updated), nil
}

// deleteCalculation handles the calculation.delete service request.
func (m *CalculationModule) deleteCalculation(ctx context.Context, req DeleteCalculationRequest, _ *mono.Msg) (DeleteCalculationResponse, error) {
	if req.UserID == "" {
		return DeleteCalculationResponse{}, ErrMissingOwner
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return DeleteCalculationResponse{}, ErrInvalidID
	}

	if err := m.repo.Delete(req.ID, req.UserID); err != nil {
		return DeleteCalculationResponse{Deleted: false, ID: req.ID}, err
	}

	m.invalidate(ctx, req.UserID, req.ID)

	return DeleteCalculationResponse{Deleted: true, ID: req.ID}, nil
}

// loadList reads a user's calculations from the repository.
func (m *CalculationModule) loadList(userID string) (ListCalculationsResponse, error) {
	calcs, err := m.repo.FindAllByUser(userID)
	if err != nil {
		return ListCalculationsResponse{}, err
	}

	resp := ListCalculationsResponse{
		Calculations: make([]CalculationResponse, 0, len(calcs)),
		Total:        len(calcs),
	}
	for _, calc := range calcs {
		resp.Calculations = append(resp.Calculations, toCalculationResponse(calc))
	}
	return resp, nil
}

// invalidate drops cache entries affected by a write.
func (m *CalculationModule) invalidate(ctx context.Context, userID, calcID string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Delete(ctx, calcKey(userID, calcID), userCalcsKey(userID)); err != nil {
		log.Printf("[calculation] Cache invalidation failed: %v", err)
	}
}

func calcKey(userID, id string) string {
	return calcKeyPrefix + userID + ":" + id
}

func userCalcsKey(userID string) string {
	return userCalcsKeyPrefix + userID
}

// toCalculationResponse converts a Calculation entity to a response.
func toCalculationResponse(calc *domain.Calculation) CalculationResponse {
	return CalculationResponse{
		ID:        calc.ID,
		UserID:    calc.UserID,
		Type:      calc.Type,
		Inputs:    calc.Inputs,
		Result:    calc.Result,
		CreatedAt: calc.CreatedAt,
		UpdatedAt: calc.UpdatedAt,
	}
}
