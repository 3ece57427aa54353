package expense

import (
	"time"

	"github.com/festflow/festflow/internal"
	"github.com/festflow/festflow/internal/comment"
	"github.com/festflow/festflow/internal/user"
	"github.com/shopspring/decimal"
)

// Status enumerates the expense state machine. The only transitions are
// the ones in the table below; everything else fails loudly instead of
// silently no-opping.
type Status string

const (
	StatusPendingTeamLead  Status = "pending_team_lead"
	StatusPendingTreasurer Status = "pending_treasurer"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusReimbursed       Status = "reimbursed"
)

type action string

const (
	actionApprove   action = "approve"
	actionReject    action = "reject"
	actionReimburse action = "reimburse"
)

// transitions is the explicit state machine: which actions each status
// admits. Reject is a terminal override reachable from either pending
// state; there is no path back out of rejected, approved or reimbursed
// except approved -> reimbursed.
var transitions = map[Status]map[action]bool{
	StatusPendingTeamLead:  {actionApprove: true, actionReject: true},
	StatusPendingTreasurer: {actionApprove: true, actionReject: true},
	StatusApproved:         {actionReimburse: true},
}

func (s Status) allows(a action) bool {
	return transitions[s][a]
}

// ApprovalStep is one stage of the fixed two-role chain. The sequence
// never shrinks or reorders after creation; only the approval fields of
// existing steps are ever mutated.
type ApprovalStep struct {
	ID         int64      `json:"-" gorm:"primaryKey"`
	ExpenseID  int64      `json:"-" gorm:"column:expense_id;not null;index"`
	Position   int        `json:"position" gorm:"not null"`
	Role       user.Role  `json:"role" gorm:"not null"`
	Approved   bool       `json:"approved" gorm:"not null"`
	ApprovedBy *string    `json:"approved_by,omitempty" gorm:"column:approved_by"`
	ApprovedAt *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
}

func (ApprovalStep) TableName() string {
	return "expense_approvals"
}

type Expense struct {
	ID                int64             `json:"id" gorm:"primaryKey"`
	EventID           int64             `json:"event_id" gorm:"column:event_id;not null"`
	SubmitterUsername string            `json:"submitter_username" gorm:"column:submitter_username;not null;index"`
	Amount            decimal.Decimal   `json:"amount" gorm:"type:numeric(14,2);not null"`
	Category          string            `json:"category" gorm:"not null"`
	Description       string            `json:"description" gorm:"not null"`
	ReceiptURL        string            `json:"receipt_url" gorm:"column:receipt_url;not null"`
	Status            Status            `json:"status" gorm:"not null;index"`
	SubmittedAt       time.Time         `json:"submitted_at" gorm:"column:submitted_at;not null"`
	TransactionID     *string           `json:"transaction_id,omitempty" gorm:"column:transaction_id"`
	ReimbursedAt      *time.Time        `json:"reimbursed_at,omitempty" gorm:"column:reimbursed_at"`
	Approvals         []ApprovalStep    `json:"approvals" gorm:"foreignKey:ExpenseID"`
	Comments          []comment.Comment `json:"comments" gorm:"polymorphic:Owner;polymorphicValue:expense"`
	CreatedAt         time.Time         `json:"-"`
	UpdatedAt         time.Time         `json:"-"`
}

func (Expense) TableName() string {
	return "expenses"
}

// NewExpense builds a freshly submitted expense with the fixed
// [team lead, treasurer] approval chain, both steps unapproved.
func NewExpense(submitter user.User, dto SubmitExpenseDTO) *Expense {
	now := time.Now()
	return &Expense{
		EventID:           dto.EventID,
		SubmitterUsername: submitter.Username,
		Amount:            dto.Amount,
		Category:          dto.Category,
		Description:       dto.Description,
		ReceiptURL:        dto.ReceiptURL,
		Status:            StatusPendingTeamLead,
		SubmittedAt:       now,
		Approvals: []ApprovalStep{
			{Position: 0, Role: user.RoleTeamLead},
			{Position: 1, Role: user.RoleTreasurer},
		},
	}
}

// statusFromApprovals derives the non-terminal status purely from the
// approval chain: pending on the first unapproved step's role, approved
// once every step is signed.
func (e *Expense) statusFromApprovals() Status {
	for i := range e.Approvals {
		if !e.Approvals[i].Approved {
			if e.Approvals[i].Role == user.RoleTreasurer {
				return StatusPendingTreasurer
			}
			return StatusPendingTeamLead
		}
	}
	return StatusApproved
}

// ApproveStep signs the next pending step if it belongs to the
// approver's role, then re-derives the status. A repeat call for a role
// that already signed returns ErrStepAlreadyApproved; an out-of-turn
// role returns ErrInvalidStatus. Neither mutates anything.
func (e *Expense) ApproveStep(approver user.User, now time.Time) error {
	if !e.Status.allows(actionApprove) {
		return ErrInvalidStatus
	}

	next := -1
	for i := range e.Approvals {
		if !e.Approvals[i].Approved {
			next = i
			break
		}
	}
	if next == -1 {
		return ErrInvalidStatus
	}

	step := &e.Approvals[next]
	if step.Role != approver.Role {
		for i := range e.Approvals {
			if e.Approvals[i].Role == approver.Role && e.Approvals[i].Approved {
				return ErrStepAlreadyApproved
			}
		}
		return ErrInvalidStatus
	}

	name := approver.DisplayName
	at := now
	step.Approved = true
	step.ApprovedBy = &name
	step.ApprovedAt = &at
	e.Status = e.statusFromApprovals()
	return nil
}

// RejectWith is the terminal override: valid from either pending state,
// bypassing the approval chain entirely. The rejection reason arrives
// as an already-validated comment.
func (e *Expense) RejectWith(reason comment.Comment) error {
	if !e.Status.allows(actionReject) {
		return ErrInvalidStatus
	}
	e.Comments = append(e.Comments, reason)
	e.Status = StatusRejected
	return nil
}

// MarkReimbursed records the payout. Only valid from approved.
func (e *Expense) MarkReimbursed(transactionID string, now time.Time) error {
	if !e.Status.allows(actionReimburse) {
		return ErrInvalidStatus
	}
	txn := transactionID
	at := now
	e.TransactionID = &txn
	e.ReimbursedAt = &at
	e.Status = StatusReimbursed
	return nil
}

// AddComment appends to the discussion thread. Comments are allowed in
// any state; the record itself is never deleted, terminal or not.
func (e *Expense) AddComment(c comment.Comment) {
	e.Comments = append(e.Comments, c)
}

var (
	ErrNotFound              = internal.NewNotFoundError("expense not found", internal.ErrCodeExpenseNotFound)
	ErrInvalidStatus         = internal.NewConflictError("expense status does not allow this transition", internal.ErrCodeInvalidExpenseStatus)
	ErrStepAlreadyApproved   = internal.NewConflictError("approval step already signed for this role", internal.ErrCodeStepAlreadyApproved)
	ErrMissingPayoutID       = internal.NewValidationError("submitter has no payout ID on file", internal.ErrCodeMissingPayoutID)
	ErrMissingTransactionRef = internal.NewValidationError("transaction ID is required", internal.ErrCodeMissingTransactionRef)
	ErrMissingReason         = internal.NewValidationError("a rejection reason is required", internal.ErrCodeMissingReason)
)
