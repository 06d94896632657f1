package calculation

import "time"

// CreateCalculationRequest is the request for creating a calculation.
// UserID is the owner, injected by the API layer from validated claims.
type CreateCalculationRequest struct {
	UserID string    `json:"user_id"`
	Type   string    `json:"type"`
	Inputs []float64 `json:"inputs"`
}

// CalculationResponse represents a calculation in responses.
type CalculationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Inputs    []float64 `json:"inputs"`
	Result    float64   `json:"result"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetCalculationRequest is the request for getting a calculation.
type GetCalculationRequest struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// ListCalculationsRequest is the request for listing a user's calculations.
type ListCalculationsRequest struct {
	UserID string `json:"user_id"`
}

// ListCalculationsResponse is the response containing a list of calculations.
type ListCalculationsResponse struct {
	Calculations []CalculationResponse `json:"calculations"`
	Total        int                   `json:"total"`
}

// UpdateCalculationRequest is the request for updating a calculation.
// Omitted fields are left unchanged; any change forces recomputation.
type UpdateCalculationRequest struct {
	ID     string     `json:"id"`
	UserID string     `json:"user_id"`
	Type   *string    `json:"type,omitempty"`
	Inputs *[]float64 `json:"inputs,omitempty"`
}

// DeleteCalculationRequest is the request for deleting a calculation.
type DeleteCalculationRequest struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// DeleteCalculationResponse is the response after deleting a calculation.
type DeleteCalculationResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}
