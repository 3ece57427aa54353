package history

import "github.com/shopspring/decimal"

// Point is one day of cumulative spend from a past event. Series
// groups points by event name so several past events can coexist.
type Point struct {
	ID              int64           `json:"-" gorm:"primaryKey"`
	Series          string          `json:"series" gorm:"not null;index"`
	Day             int             `json:"day" gorm:"not null"`
	CumulativeSpend decimal.Decimal `json:"cumulative_spend" gorm:"type:numeric(14,2);not null"`
}

func (Point) TableName() string {
	return "historical_points"
}

// Repository reads past-event spend curves. The data is seeded, never
// written at runtime.
type Repository interface {
	ListSeries(series string) ([]Point, error)
	SeriesNames() ([]string, error)
}
