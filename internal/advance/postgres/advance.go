package postgres

import (
	"errors"

	"github.com/festflow/festflow/internal/advance"
	"github.com/festflow/festflow/internal/audit"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdvanceRepository implements advance.Repository using GORM, with the
// same transactional contract as the expense repository: record and
// audit entry commit together or not at all.
type AdvanceRepository struct {
	db *gorm.DB
}

func NewAdvanceRepository(db *gorm.DB) advance.Repository {
	return &AdvanceRepository{db: db}
}

func (r *AdvanceRepository) Create(adv *advance.Advance, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(adv).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func (r *AdvanceRepository) GetByID(id int64) (*advance.Advance, error) {
	var adv advance.Advance
	err := withComments(r.db).Where("id = ?", id).First(&adv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, advance.ErrNotFound
		}
		return nil, err
	}
	return &adv, nil
}

func (r *AdvanceRepository) GetByRequester(username string, limit, offset int) ([]*advance.Advance, error) {
	var advances []*advance.Advance
	err := withComments(r.db).
		Where("requester_username = ?", username).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&advances).Error
	return advances, err
}

// GetByStatuses returns the review queue oldest-first so approvers work
// through requests in arrival order.
func (r *AdvanceRepository) GetByStatuses(statuses []advance.Status, limit, offset int) ([]*advance.Advance, error) {
	var advances []*advance.Advance
	err := withComments(r.db).
		Where("status IN ?", statuses).
		Order("submitted_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&advances).Error
	return advances, err
}

// UpdateAtomic loads the advance under a row lock, applies the mutation
// and commits the changed record together with the audit entry the
// mutation produced. A mutation error rolls everything back.
func (r *AdvanceRepository) UpdateAtomic(id int64, mutate func(*advance.Advance) (*audit.Entry, error)) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		q := withComments(tx)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var adv advance.Advance
		if err := q.Where("id = ?", id).First(&adv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return advance.ErrNotFound
			}
			return err
		}

		entry, err := mutate(&adv)
		if err != nil {
			return err
		}

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&adv).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func withComments(db *gorm.DB) *gorm.DB {
	return db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	})
}
