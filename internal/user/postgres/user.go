package postgres

import (
	"errors"

	"github.com/festflow/festflow/internal/audit"
	"github.com/festflow/festflow/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements user.Repository using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsername(username string) (*user.User, error) {
	var u user.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("id ASC").Find(&users).Error
	return users, err
}

// UpdatePayoutID writes the new handle and its audit entry atomically.
func (r *UserRepository) UpdatePayoutID(username, payoutID string, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&user.User{}).
			Where("username = ?", username).
			Update("payout_id", payoutID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return user.ErrNotFound
		}
		return tx.Create(entry).Error
	})
}
