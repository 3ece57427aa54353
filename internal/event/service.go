package event

import "log/slog"

type Repository interface {
	GetByID(id int64) (*Event, error)
	List() ([]*Event, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(id int64) (*Event, error) {
	ev, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return ev, nil
}

func (s *Service) List() ([]*Event, error) {
	events, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		return nil, err
	}
	return events, nil
}
