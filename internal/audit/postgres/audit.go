package postgres

import (
	"github.com/festflow/festflow/internal/audit"
	"gorm.io/gorm"
)

// AuditRepository implements audit.Repository using GORM.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(entry *audit.Entry) error {
	return r.db.Create(entry).Error
}

// List returns entries newest-first. The id tiebreak keeps ordering
// stable for entries sharing a timestamp.
func (r *AuditRepository) List(limit, offset int) ([]*audit.Entry, error) {
	var entries []*audit.Entry
	err := r.db.
		Order("occurred_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *AuditRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&audit.Entry{}).Count(&n).Error
	return n, err
}
