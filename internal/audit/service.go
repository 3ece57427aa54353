package audit

import (
	"log/slog"
)

// Service exposes the activity ledger. Workflow mutations append their
// entries inside their own repository transactions; this service covers
// standalone appends (seeding, system events) and reads.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends a standalone entry.
func (s *Service) Record(actorName, format string, args ...any) error {
	entry := NewEntry(actorName, format, args...)
	if err := s.repo.Append(entry); err != nil {
		s.logger.Error("failed to append audit entry", "error", err, "actor", actorName)
		return err
	}
	return nil
}

// List returns entries newest-first.
func (s *Service) List(limit, offset int) ([]*Entry, error) {
	entries, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		return nil, err
	}
	return entries, nil
}
