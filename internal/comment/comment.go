package comment

import (
	"time"

	"github.com/festflow/festflow/internal"
	"github.com/festflow/festflow/internal/user"
)

// OwnerType discriminates which workflow record a comment hangs off.
const (
	OwnerExpense = "expense"
	OwnerAdvance = "advance"
)

// Comment is an immutable discussion entry on an expense or advance.
// Both workflow engines share this model and the validation below;
// ordering is insertion order and nothing ever edits or removes a row.
type Comment struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	OwnerID    int64     `json:"-" gorm:"column:owner_id;not null;index:idx_comments_owner"`
	OwnerType  string    `json:"-" gorm:"column:owner_type;not null;index:idx_comments_owner"`
	AuthorName string    `json:"author_name" gorm:"column:author_name;not null"`
	AuthorRole user.Role `json:"author_role" gorm:"column:author_role;not null"`
	Text       string    `json:"text" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

var ErrEmptyText = internal.NewValidationError("comment text is required", internal.ErrCodeEmptyComment)

// New validates and builds a comment authored by the given user.
func New(author user.User, text string) (Comment, error) {
	if text == "" {
		return Comment{}, ErrEmptyText
	}
	return Comment{
		AuthorName: author.DisplayName,
		AuthorRole: author.Role,
		Text:       text,
		CreatedAt:  time.Now(),
	}, nil
}
