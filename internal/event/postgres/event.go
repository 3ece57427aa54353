package postgres

import (
	"errors"

	"github.com/festflow/festflow/internal/event"
	"gorm.io/gorm"
)

// EventRepository implements event.Repository using GORM.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) event.Repository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(id int64) (*event.Event, error) {
	var ev event.Event
	err := r.db.Where("id = ?", id).First(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, event.ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}

func (r *EventRepository) List() ([]*event.Event, error) {
	var events []*event.Event
	err := r.db.Order("start_date ASC").Find(&events).Error
	return events, err
}
