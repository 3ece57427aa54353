package event

import (
	"time"

	"github.com/festflow/festflow/internal"
	"github.com/shopspring/decimal"
)

// Event is reference data: the workflow engines read budgets and start
// dates but never write back.
type Event struct {
	ID        int64           `json:"id" gorm:"primaryKey"`
	Name      string          `json:"name" gorm:"not null"`
	Budget    decimal.Decimal `json:"budget" gorm:"type:numeric(14,2);not null"`
	StartDate time.Time       `json:"start_date" gorm:"column:start_date;type:date;not null"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Event) TableName() string {
	return "events"
}

var ErrNotFound = internal.NewNotFoundError("event not found", internal.ErrCodeEventNotFound)
