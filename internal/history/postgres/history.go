package postgres

import (
	"github.com/festflow/festflow/internal/history"
	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) history.Repository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) ListSeries(series string) ([]history.Point, error) {
	var points []history.Point
	err := r.db.
		Where("series = ?", series).
		Order("day ASC").
		Find(&points).Error
	return points, err
}

func (r *HistoryRepository) SeriesNames() ([]string, error) {
	var names []string
	err := r.db.
		Model(&history.Point{}).
		Distinct("series").
		Order("series ASC").
		Pluck("series", &names).Error
	return names, err
}
