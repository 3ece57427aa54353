package expense

import (
	"log/slog"
	"time"

	"github.com/festflow/festflow/internal/audit"
	"github.com/festflow/festflow/internal/auth"
	"github.com/festflow/festflow/internal/comment"
	"github.com/festflow/festflow/internal/user"
)

// Repository defines the data access methods for expenses. Create and
// UpdateAtomic persist the record and its audit entry in one
// transaction; UpdateAtomic additionally runs the mutation under a row
// lock so the read-validate-write cycle is a real critical section.
type Repository interface {
	Create(exp *Expense, entry *audit.Entry) error
	GetByID(id int64) (*Expense, error)
	GetBySubmitter(username string, limit, offset int) ([]*Expense, error)
	GetByStatuses(statuses []Status, limit, offset int) ([]*Expense, error)
	GetReimbursed(eventID int64) ([]*Expense, error)
	UpdateAtomic(id int64, mutate func(*Expense) (*audit.Entry, error)) error
}

// Directory is the slice of the identity directory the engine needs:
// resolving a submitter to check their payout handle.
type Directory interface {
	GetByUsername(username string) (*user.User, error)
}

// Service owns the expense approval chain.
type Service struct {
	repo      Repository
	directory Directory
	logger    *slog.Logger
}

func NewService(repo Repository, directory Directory, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		logger:    logger,
	}
}

// Submit validates and persists a new expense at the head of the chain.
func (s *Service) Submit(actor user.User, dto SubmitExpenseDTO) (*Expense, error) {
	if err := auth.Authorize(actor, auth.ActionSubmitExpense); err != nil {
		s.logger.Warn("submit expense denied", "username", actor.Username, "role", actor.Role)
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.logger.Warn("expense validation failed", "error", err, "username", actor.Username)
		return nil, err
	}

	exp := NewExpense(actor, dto)
	entry := audit.NewEntry(actor.DisplayName,
		"submitted an expense of ₹%s for '%s'", dto.Amount.StringFixed(2), dto.Description)

	if err := s.repo.Create(exp, entry); err != nil {
		s.logger.Error("failed to create expense", "error", err, "username", actor.Username)
		return nil, err
	}

	s.logger.Info("expense submitted",
		"expense_id", exp.ID,
		"username", actor.Username,
		"amount", dto.Amount.StringFixed(2),
		"status", exp.Status)
	return exp, nil
}

// Approve signs the actor's pending approval step and advances the
// chain. Repeat calls and out-of-turn roles fail without mutation or
// audit.
func (s *Service) Approve(expenseID int64, actor user.User) error {
	if err := auth.Authorize(actor, auth.ActionApproveExpense); err != nil {
		return err
	}

	err := s.repo.UpdateAtomic(expenseID, func(e *Expense) (*audit.Entry, error) {
		if err := e.ApproveStep(actor, time.Now()); err != nil {
			return nil, err
		}
		return audit.NewEntry(actor.DisplayName,
			"approved expense #%d at the %s level", e.ID, actor.Role), nil
	})
	if err != nil {
		s.logger.Warn("approve expense failed", "error", err, "expense_id", expenseID, "username", actor.Username)
		return err
	}

	s.logger.Info("expense approval step signed", "expense_id", expenseID, "role", actor.Role)
	return nil
}

// Reject is the terminal override from either pending state. The
// reason is mandatory and lands in the comment thread.
func (s *Service) Reject(expenseID int64, actor user.User, reason string) error {
	if err := auth.Authorize(actor, auth.ActionRejectExpense); err != nil {
		return err
	}
	if reason == "" {
		return ErrMissingReason
	}

	err := s.repo.UpdateAtomic(expenseID, func(e *Expense) (*audit.Entry, error) {
		c, err := comment.New(actor, reason)
		if err != nil {
			return nil, err
		}
		if err := e.RejectWith(c); err != nil {
			return nil, err
		}
		return audit.NewEntry(actor.DisplayName,
			"rejected expense #%d: '%s'", e.ID, reason), nil
	})
	if err != nil {
		s.logger.Warn("reject expense failed", "error", err, "expense_id", expenseID, "username", actor.Username)
		return err
	}

	s.logger.Info("expense rejected", "expense_id", expenseID, "username", actor.Username)
	return nil
}

// Reimburse closes out an approved expense. The payout-id precondition
// is enforced here, not by the caller: an expense is never reimbursed
// to a submitter without a payout handle on file.
func (s *Service) Reimburse(expenseID int64, actor user.User, transactionID string) error {
	if err := auth.Authorize(actor, auth.ActionReimburseExpense); err != nil {
		return err
	}
	if transactionID == "" {
		return ErrMissingTransactionRef
	}

	err := s.repo.UpdateAtomic(expenseID, func(e *Expense) (*audit.Entry, error) {
		submitter, err := s.directory.GetByUsername(e.SubmitterUsername)
		if err != nil {
			return nil, err
		}
		if !submitter.HasPayoutID() {
			return nil, ErrMissingPayoutID
		}
		if err := e.MarkReimbursed(transactionID, time.Now()); err != nil {
			return nil, err
		}
		return audit.NewEntry(actor.DisplayName,
			"reimbursed expense #%d (₹%s) via UPI to %s (%s). Transaction ID: %s",
			e.ID, e.Amount.StringFixed(2), submitter.DisplayName, submitter.PayoutID, transactionID), nil
	})
	if err != nil {
		s.logger.Warn("reimburse expense failed", "error", err, "expense_id", expenseID, "username", actor.Username)
		return err
	}

	s.logger.Info("expense reimbursed", "expense_id", expenseID, "transaction_id", transactionID)
	return nil
}

// AddComment appends to the expense's discussion thread.
func (s *Service) AddComment(expenseID int64, actor user.User, text string) error {
	if err := auth.Authorize(actor, auth.ActionCommentExpense); err != nil {
		return err
	}

	err := s.repo.UpdateAtomic(expenseID, func(e *Expense) (*audit.Entry, error) {
		c, err := comment.New(actor, text)
		if err != nil {
			return nil, err
		}
		e.AddComment(c)
		return audit.NewEntry(actor.DisplayName,
			"commented on expense #%d: '%s'", e.ID, text), nil
	})
	if err != nil {
		s.logger.Warn("comment on expense failed", "error", err, "expense_id", expenseID)
		return err
	}
	return nil
}

// GetByID returns a single expense with its approval chain and thread.
func (s *Service) GetByID(expenseID int64) (*Expense, error) {
	return s.repo.GetByID(expenseID)
}

// ForSubmitter lists the actor's own submissions, newest first.
func (s *Service) ForSubmitter(actor user.User, limit, offset int) ([]*Expense, error) {
	return s.repo.GetBySubmitter(actor.Username, limit, offset)
}

// PendingForRole lists the expenses waiting on the actor: the team lead
// sees the first stage, the treasurer sees the second stage plus
// approved expenses awaiting reimbursement.
func (s *Service) PendingForRole(actor user.User, limit, offset int) ([]*Expense, error) {
	var statuses []Status
	switch actor.Role {
	case user.RoleTeamLead:
		statuses = []Status{StatusPendingTeamLead}
	case user.RoleTreasurer:
		statuses = []Status{StatusPendingTreasurer, StatusApproved}
	default:
		return []*Expense{}, nil
	}
	return s.repo.GetByStatuses(statuses, limit, offset)
}
