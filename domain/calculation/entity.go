package calculation

import (
	"time"

	"gorm.io/gorm"
)

// Calculation represents a stored calculation owned by a user.
// Result is always derived from (Type, Inputs) through Compute and is
// recomputed whenever either changes.
type Calculation struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"index;size:36;not null" json:"user_id"`
	Type      string         `gorm:"size:20;not null" json:"type"`
	Inputs    []float64      `gorm:"serializer:json;not null" json:"inputs"`
	Result    float64        `gorm:"not null" json:"result"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the Calculation entity.
func (Calculation) TableName() string {
	return "calculations"
}
