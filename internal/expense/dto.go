package expense

import (
	"github.com/festflow/festflow/internal"
	"github.com/shopspring/decimal"
)

// SubmitExpenseDTO is the request payload for submitting an expense.
// The receipt is mandatory: an expense without proof of spend never
// enters the chain.
type SubmitExpenseDTO struct {
	EventID     int64           `json:"event_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ReceiptURL  string          `json:"receipt_url"`
}

func (dto SubmitExpenseDTO) Validate() error {
	if dto.EventID <= 0 {
		return internal.NewValidationError("event_id is required", internal.ErrCodeValidationFailed)
	}
	if !dto.Amount.IsPositive() {
		return internal.NewValidationError("amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if dto.Category == "" {
		return internal.NewValidationError("category is required", internal.ErrCodeValidationFailed)
	}
	if dto.Description == "" {
		return internal.NewValidationError("description is required", internal.ErrCodeValidationFailed)
	}
	if dto.ReceiptURL == "" {
		return internal.NewValidationError("a receipt upload is mandatory", internal.ErrCodeMissingReceipt)
	}
	return nil
}

// RejectExpenseDTO carries the mandatory rejection reason.
type RejectExpenseDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectExpenseDTO) Validate() error {
	if dto.Reason == "" {
		return ErrMissingReason
	}
	return nil
}

// ReimburseExpenseDTO carries the treasurer-entered transaction
// reference.
type ReimburseExpenseDTO struct {
	TransactionID string `json:"transaction_id"`
}

func (dto ReimburseExpenseDTO) Validate() error {
	if dto.TransactionID == "" {
		return ErrMissingTransactionRef
	}
	return nil
}

// CommentDTO carries a new discussion comment.
type CommentDTO struct {
	Text string `json:"text"`
}
