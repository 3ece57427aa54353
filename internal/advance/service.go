package advance

import (
	"log/slog"
	"time"

	"github.com/festflow/festflow/internal/audit"
	"github.com/festflow/festflow/internal/auth"
	"github.com/festflow/festflow/internal/comment"
	"github.com/festflow/festflow/internal/user"
)

// Repository defines the data access methods for advances. The same
// transactional contract as expenses: Create and UpdateAtomic commit
// the record and its audit entry together, and UpdateAtomic holds a
// row lock across the mutation.
type Repository interface {
	Create(adv *Advance, entry *audit.Entry) error
	GetByID(id int64) (*Advance, error)
	GetByRequester(username string, limit, offset int) ([]*Advance, error)
	GetByStatuses(statuses []Status, limit, offset int) ([]*Advance, error)
	UpdateAtomic(id int64, mutate func(*Advance) (*audit.Entry, error)) error
}

// Service owns the advance lifecycle.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Request validates and persists a new advance in the pending state.
func (s *Service) Request(actor user.User, dto RequestAdvanceDTO) (*Advance, error) {
	if err := auth.Authorize(actor, auth.ActionRequestAdvance); err != nil {
		s.logger.Warn("request advance denied", "username", actor.Username, "role", actor.Role)
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.logger.Warn("advance validation failed", "error", err, "username", actor.Username)
		return nil, err
	}

	adv := NewAdvance(actor, dto)
	entry := audit.NewEntry(actor.DisplayName,
		"requested an advance of ₹%s for %s", dto.Amount.StringFixed(2), dto.Vendor)

	if err := s.repo.Create(adv, entry); err != nil {
		s.logger.Error("failed to create advance", "error", err, "username", actor.Username)
		return nil, err
	}

	s.logger.Info("advance requested",
		"advance_id", adv.ID,
		"username", actor.Username,
		"amount", dto.Amount.StringFixed(2))
	return adv, nil
}

// Approve moves a pending advance forward. Any other state fails
// without mutation or audit.
func (s *Service) Approve(advanceID int64, actor user.User) error {
	if err := auth.Authorize(actor, auth.ActionApproveAdvance); err != nil {
		return err
	}

	err := s.repo.UpdateAtomic(advanceID, func(a *Advance) (*audit.Entry, error) {
		if err := a.Approve(actor); err != nil {
			return nil, err
		}
		return audit.NewEntry(actor.DisplayName,
			"approved advance #%d for %s", a.ID, a.Vendor), nil
	})
	if err != nil {
		s.logger.Warn("approve advance failed", "error", err, "advance_id", advanceID, "username", actor.Username)
		return err
	}

	s.logger.Info("advance approved", "advance_id", advanceID, "username", actor.Username)
	return nil
}

// Reject terminates a pending advance. The reason is mandatory and
// lands in the comment thread.
func (s *Service) Reject(advanceID int64, actor user.User, reason string) error {
	if err := auth.Authorize(actor, auth.ActionRejectAdvance); err != nil {
		return err
	}
	if reason == "" {
		return ErrMissingReason
	}

	err := s.repo.UpdateAtomic(advanceID, func(a *Advance) (*audit.Entry, error) {
		c, err := comment.New(actor, reason)
		if err != nil {
			return nil, err
		}
		if err := a.Reject(c); err != nil {
			return nil, err
		}
		return audit.NewEntry(actor.DisplayName,
			"rejected advance #%d: '%s'", a.ID, reason), nil
	})
	if err != nil {
		s.logger.Warn("reject advance failed", "error", err, "advance_id", advanceID, "username", actor.Username)
		return err
	}

	s.logger.Info("advance rejected", "advance_id", advanceID, "username", actor.Username)
	return nil
}

// MarkPaid records the treasurer's transfer. The transaction reference
// is mandatory.
func (s *Service) MarkPaid(advanceID int64, actor user.User, transactionID string) error {
	if err := auth.Authorize(actor, auth.ActionPayAdvance); err != nil {
		return err
	}
	if transactionID == "" {
		return ErrMissingTransactionRef
	}

	err := s.repo.UpdateAtomic(advanceID, func(a *Advance) (*audit.Entry, error) {
		if err := a.MarkPaid(actor, transactionID, time.Now()); err != nil {
			return nil, err
		}
		return audit.NewEntry(actor.DisplayName,
			"paid advance #%d (₹%s) to %s. Transaction ID: %s",
			a.ID, a.Amount.StringFixed(2), a.RequesterUsername, transactionID), nil
	})
	if err != nil {
		s.logger.Warn("pay advance failed", "error", err, "advance_id", advanceID, "username", actor.Username)
		return err
	}

	s.logger.Info("advance paid", "advance_id", advanceID, "transaction_id", transactionID)
	return nil
}

// Close attaches the final receipt and ends the lifecycle. Only the
// requester may close their own advance.
func (s *Service) Close(advanceID int64, actor user.User, receiptURL string) error {
	if err := auth.Authorize(actor, auth.ActionCloseAdvance); err != nil {
		return err
	}
	if receiptURL == "" {
		return ErrMissingReceipt
	}

	err := s.repo.UpdateAtomic(advanceID, func(a *Advance) (*audit.Entry, error) {
		if a.RequesterUsername != actor.Username {
			return nil, auth.ErrForbidden
		}
		if err := a.Close(receiptURL); err != nil {
			return nil, err
		}
		return audit.NewEntry(actor.DisplayName,
			"closed advance #%d with final receipt", a.ID), nil
	})
	if err != nil {
		s.logger.Warn("close advance failed", "error", err, "advance_id", advanceID, "username", actor.Username)
		return err
	}

	s.logger.Info("advance closed", "advance_id", advanceID, "username", actor.Username)
	return nil
}

// AddComment appends to the advance's discussion thread.
func (s *Service) AddComment(advanceID int64, actor user.User, text string) error {
	if err := auth.Authorize(actor, auth.ActionCommentAdvance); err != nil {
		return err
	}

	err := s.repo.UpdateAtomic(advanceID, func(a *Advance) (*audit.Entry, error) {
		c, err := comment.New(actor, text)
		if err != nil {
			return nil, err
		}
		a.AddComment(c)
		return audit.NewEntry(actor.DisplayName,
			"commented on advance #%d: '%s'", a.ID, text), nil
	})
	if err != nil {
		s.logger.Warn("comment on advance failed", "error", err, "advance_id", advanceID)
		return err
	}
	return nil
}

// GetByID returns a single advance with its comment thread.
func (s *Service) GetByID(advanceID int64) (*Advance, error) {
	return s.repo.GetByID(advanceID)
}

// ForRequester lists the actor's own advances, newest first.
func (s *Service) ForRequester(actor user.User, limit, offset int) ([]*Advance, error) {
	return s.repo.GetByRequester(actor.Username, limit, offset)
}

// PendingForRole lists the advances waiting on the actor: the team
// lead sees fresh requests, the treasurer sees approved requests
// awaiting payment.
func (s *Service) PendingForRole(actor user.User, limit, offset int) ([]*Advance, error) {
	var statuses []Status
	switch actor.Role {
	case user.RoleTeamLead:
		statuses = []Status{StatusPending}
	case user.RoleTreasurer:
		statuses = []Status{StatusApprovedByTeamLead}
	default:
		return []*Advance{}, nil
	}
	return s.repo.GetByStatuses(statuses, limit, offset)
}
