package audit

import (
	"fmt"
	"time"
)

// Entry is one line of the activity ledger. Rows are only ever inserted;
// no update or delete path exists anywhere in the codebase.
type Entry struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	OccurredAt time.Time `json:"occurred_at" gorm:"column:occurred_at;not null"`
	ActorName  string    `json:"actor_name" gorm:"column:actor_name;not null"`
	Action     string    `json:"action" gorm:"not null"`
}

func (Entry) TableName() string {
	return "audit_log"
}

// NewEntry stamps the entry at creation time so the ledger ordering
// reflects when the action happened, not when the row was flushed.
func NewEntry(actorName, format string, args ...any) *Entry {
	return &Entry{
		OccurredAt: time.Now(),
		ActorName:  actorName,
		Action:     fmt.Sprintf(format, args...),
	}
}

// Repository is intentionally append-and-read-only.
type Repository interface {
	Append(entry *Entry) error
	List(limit, offset int) ([]*Entry, error)
	Count() (int64, error)
}
