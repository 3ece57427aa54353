package advance

import (
	"time"

	"github.com/festflow/festflow/internal"
	"github.com/festflow/festflow/internal/comment"
	"github.com/festflow/festflow/internal/user"
	"github.com/shopspring/decimal"
)

// Status enumerates the advance state machine. The chain is strictly
// linear: pending -> approved_by_team_lead -> paid -> closed, with
// rejected reachable only from pending.
type Status string

const (
	StatusPending            Status = "pending"
	StatusApprovedByTeamLead Status = "approved_by_team_lead"
	StatusRejected           Status = "rejected"
	StatusPaid               Status = "paid"
	StatusClosed             Status = "closed"
)

type action string

const (
	actionApprove action = "approve"
	actionReject  action = "reject"
	actionPay     action = "pay"
	actionClose   action = "close"
)

var transitions = map[Status]map[action]bool{
	StatusPending:            {actionApprove: true, actionReject: true},
	StatusApprovedByTeamLead: {actionPay: true},
	StatusPaid:               {actionClose: true},
}

func (s Status) allows(a action) bool {
	return transitions[s][a]
}

// Advance is a pre-paid fund request against a vendor quote. The final
// receipt proves the spend and is required to close the loop.
type Advance struct {
	ID                 int64             `json:"id" gorm:"primaryKey"`
	EventID            int64             `json:"event_id" gorm:"column:event_id;not null"`
	RequesterUsername  string            `json:"requester_username" gorm:"column:requester_username;not null;index"`
	Vendor             string            `json:"vendor" gorm:"not null"`
	Purpose            string            `json:"purpose" gorm:"not null"`
	Amount             decimal.Decimal   `json:"amount" gorm:"type:numeric(14,2);not null"`
	QuoteURL           *string           `json:"quote_url,omitempty" gorm:"column:quote_url"`
	Status             Status            `json:"status" gorm:"not null;index"`
	SubmittedAt        time.Time         `json:"submitted_at" gorm:"column:submitted_at;not null"`
	ApprovedBy         *string           `json:"approved_by,omitempty" gorm:"column:approved_by"`
	PaidBy             *string           `json:"paid_by,omitempty" gorm:"column:paid_by"`
	PaidTransactionID  *string           `json:"paid_transaction_id,omitempty" gorm:"column:paid_transaction_id"`
	PaidAt             *time.Time        `json:"paid_at,omitempty" gorm:"column:paid_at"`
	ReceiptURL         *string           `json:"receipt_url,omitempty" gorm:"column:receipt_url"`
	Comments           []comment.Comment `json:"comments" gorm:"polymorphic:Owner;polymorphicValue:advance"`
	CreatedAt          time.Time         `json:"-"`
	UpdatedAt          time.Time         `json:"-"`
}

func (Advance) TableName() string {
	return "advances"
}

// NewAdvance builds a freshly requested advance at the head of the
// chain.
func NewAdvance(requester user.User, dto RequestAdvanceDTO) *Advance {
	adv := &Advance{
		EventID:           dto.EventID,
		RequesterUsername: requester.Username,
		Vendor:            dto.Vendor,
		Purpose:           dto.Purpose,
		Amount:            dto.Amount,
		Status:            StatusPending,
		SubmittedAt:       time.Now(),
	}
	if dto.QuoteURL != "" {
		quote := dto.QuoteURL
		adv.QuoteURL = &quote
	}
	return adv
}

// Approve moves pending -> approved_by_team_lead.
func (a *Advance) Approve(approver user.User) error {
	if !a.Status.allows(actionApprove) {
		return ErrInvalidStatus
	}
	name := approver.DisplayName
	a.ApprovedBy = &name
	a.Status = StatusApprovedByTeamLead
	return nil
}

// Reject terminates a pending advance. The reason arrives as an
// already-validated comment.
func (a *Advance) Reject(reason comment.Comment) error {
	if !a.Status.allows(actionReject) {
		return ErrInvalidStatus
	}
	a.Comments = append(a.Comments, reason)
	a.Status = StatusRejected
	return nil
}

// MarkPaid records the treasurer's transfer against the approved
// advance.
func (a *Advance) MarkPaid(payer user.User, transactionID string, now time.Time) error {
	if !a.Status.allows(actionPay) {
		return ErrInvalidStatus
	}
	name := payer.DisplayName
	txn := transactionID
	at := now
	a.PaidBy = &name
	a.PaidTransactionID = &txn
	a.PaidAt = &at
	a.Status = StatusPaid
	return nil
}

// Close attaches the final proof of spend. Requires a prior paid state
// and refuses to overwrite a receipt already on file.
func (a *Advance) Close(receiptURL string) error {
	if !a.Status.allows(actionClose) {
		return ErrInvalidStatus
	}
	if a.ReceiptURL != nil && *a.ReceiptURL != "" {
		return ErrReceiptAlreadyFiled
	}
	receipt := receiptURL
	a.ReceiptURL = &receipt
	a.Status = StatusClosed
	return nil
}

func (a *Advance) AddComment(c comment.Comment) {
	a.Comments = append(a.Comments, c)
}

var (
	ErrNotFound              = internal.NewNotFoundError("advance not found", internal.ErrCodeAdvanceNotFound)
	ErrInvalidStatus         = internal.NewConflictError("advance status does not allow this transition", internal.ErrCodeInvalidAdvanceStatus)
	ErrReceiptAlreadyFiled   = internal.NewConflictError("a final receipt is already on file", internal.ErrCodeReceiptAlreadyFiled)
	ErrMissingTransactionRef = internal.NewValidationError("transaction ID is required", internal.ErrCodeMissingTransactionRef)
	ErrMissingReason         = internal.NewValidationError("a rejection reason is required", internal.ErrCodeMissingReason)
	ErrMissingReceipt        = internal.NewValidationError("a final receipt is required to close an advance", internal.ErrCodeMissingReceipt)
)
