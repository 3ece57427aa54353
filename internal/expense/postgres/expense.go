package postgres

import (
	"errors"

	"github.com/festflow/festflow/internal/audit"
	"github.com/festflow/festflow/internal/expense"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExpenseRepository implements expense.Repository using GORM. Every
// mutation commits the record and its audit entry in one transaction.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(exp *expense.Expense, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exp).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func (r *ExpenseRepository) GetByID(id int64) (*expense.Expense, error) {
	var exp expense.Expense
	err := withAssociations(r.db).Where("id = ?", id).First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, expense.ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) GetBySubmitter(username string, limit, offset int) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := withAssociations(r.db).
		Where("submitter_username = ?", username).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

// GetByStatuses returns the review queue oldest-first so approvers work
// through submissions in arrival order.
func (r *ExpenseRepository) GetByStatuses(statuses []expense.Status, limit, offset int) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := withAssociations(r.db).
		Where("status IN ?", statuses).
		Order("submitted_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetReimbursed(eventID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := withAssociations(r.db).
		Where("event_id = ? AND status = ?", eventID, expense.StatusReimbursed).
		Order("reimbursed_at ASC").
		Find(&expenses).Error
	return expenses, err
}

// UpdateAtomic loads the expense under a row lock, applies the mutation
// and commits the changed record together with the audit entry the
// mutation produced. A mutation error rolls everything back: no partial
// state, no stray audit rows.
func (r *ExpenseRepository) UpdateAtomic(id int64, mutate func(*expense.Expense) (*audit.Entry, error)) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		q := withAssociations(tx)
		// SQLite serializes write transactions on its own; the row lock
		// is a postgres concern.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var exp expense.Expense
		if err := q.Where("id = ?", id).First(&exp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return expense.ErrNotFound
			}
			return err
		}

		entry, err := mutate(&exp)
		if err != nil {
			return err
		}

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&exp).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		})
}
