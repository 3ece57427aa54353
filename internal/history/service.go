package history

import "log/slog"

// Service exposes historical spend curves for budget planning.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Series returns one past event's spend curve ordered by day.
func (s *Service) Series(name string) ([]Point, error) {
	return s.repo.ListSeries(name)
}

// SeriesNames lists the past events with data on file.
func (s *Service) SeriesNames() ([]string, error) {
	return s.repo.SeriesNames()
}
