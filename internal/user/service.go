package user

import (
	"log/slog"

	"github.com/festflow/festflow/internal/audit"
)

// Repository defines the data access surface of the identity directory.
// UpdatePayoutID persists the change and the audit entry in one
// transaction.
type Repository interface {
	GetByUsername(username string) (*User, error)
	List() ([]*User, error)
	UpdatePayoutID(username, payoutID string, entry *audit.Entry) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByUsername(username string) (*User, error) {
	u, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Usernames lists every known username, in directory order.
func (s *Service) Usernames() ([]string, error) {
	users, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}
	return names, nil
}

// UpdatePayoutID changes the caller's own payout handle. The route
// enforces the role; own-ness is enforced here by keying on the actor.
func (s *Service) UpdatePayoutID(actor User, dto UpdatePayoutDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	entry := audit.NewEntry(actor.DisplayName, "updated payout ID to %s", dto.PayoutID)
	if err := s.repo.UpdatePayoutID(actor.Username, dto.PayoutID, entry); err != nil {
		s.logger.Error("failed to update payout id", "error", err, "username", actor.Username)
		return err
	}

	s.logger.Info("payout id updated", "username", actor.Username)
	return nil
}
