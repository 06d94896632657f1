package calculation

import (
	"errors"
	"fmt"

	domain "github.com/example/calculator-api-demo/domain/calculation"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a calculation is not found for the
// requesting owner.
var ErrNotFound = errors.New("calculation not found")

// Repository provides owner-scoped access to calculation storage. Every
// query filters on user_id so one user can never reach another's rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new calculation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new calculation to the database.
func (r *Repository) Create(calc *domain.Calculation) error {
	if err := r.db.Create(calc).Error; err != nil {
		return fmt.Errorf("failed to create calculation: %w", err)
	}
	return nil
}

// FindByID retrieves a calculation by ID for the given owner.
func (r *Repository) FindByID(id, userID string) (*domain.Calculation, error) {
	var calc domain.Calculation
	if err := r.db.First(&calc, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find calculation: %w", err)
	}
	return &calc, nil
}

// FindAllByUser retrieves all calculations owned by userID, newest first.
func (r *Repository) FindAllByUser(userID string) ([]*domain.Calculation, error) {
	var calcs []*domain.Calculation
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&calcs).Error; err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	return calcs, nil
}

// Update persists changes to an existing calculation.
func (r *Repository) Update(calc *domain.Calculation) error {
	// Select forces zero values (e.g. a result of 0) to be written.
	result := r.db.Model(&domain.Calculation{}).
		Where("id = ? AND user_id = ?", calc.ID, calc.UserID).
		Select("type", "inputs", "result").
		Updates(calc)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update calculation: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a calculation by ID for the given owner (soft delete).
func (r *Repository) Delete(id, userID string) error {
	result := r.db.Delete(&domain.Calculation{}, "id = ? AND user_id = ?", id, userID)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete calculation: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
