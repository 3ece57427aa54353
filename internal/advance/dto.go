package advance

import (
	"github.com/festflow/festflow/internal"
	"github.com/shopspring/decimal"
)

type RequestAdvanceDTO struct {
	EventID  int64           `json:"event_id"`
	Vendor   string          `json:"vendor"`
	Purpose  string          `json:"purpose"`
	Amount   decimal.Decimal `json:"amount"`
	QuoteURL string          `json:"quote_url,omitempty"`
}

func (d RequestAdvanceDTO) Validate() error {
	if d.EventID <= 0 {
		return internal.NewValidationError("event_id is required", internal.ErrCodeValidationFailed)
	}
	if d.Vendor == "" {
		return internal.NewValidationError("vendor is required", internal.ErrCodeValidationFailed)
	}
	if d.Purpose == "" {
		return internal.NewValidationError("purpose is required", internal.ErrCodeValidationFailed)
	}
	if d.Amount.IsNegative() {
		return internal.NewValidationError("amount must not be negative", internal.ErrCodeInvalidAmount)
	}
	return nil
}

// RejectAdvanceDTO carries the mandatory rejection reason.
type RejectAdvanceDTO struct {
	Reason string `json:"reason"`
}

func (d RejectAdvanceDTO) Validate() error {
	if d.Reason == "" {
		return ErrMissingReason
	}
	return nil
}

// MarkPaidDTO carries the treasurer-entered transaction reference.
type MarkPaidDTO struct {
	TransactionID string `json:"transaction_id"`
}

func (d MarkPaidDTO) Validate() error {
	if d.TransactionID == "" {
		return ErrMissingTransactionRef
	}
	return nil
}

// CloseAdvanceDTO carries the final receipt reference.
type CloseAdvanceDTO struct {
	ReceiptURL string `json:"receipt_url"`
}

func (d CloseAdvanceDTO) Validate() error {
	if d.ReceiptURL == "" {
		return ErrMissingReceipt
	}
	return nil
}

// CommentDTO carries a new discussion comment.
type CommentDTO struct {
	Text string `json:"text"`
}
