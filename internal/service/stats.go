package service

import (
	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/model"
)

// statsDays is the per-day counts window shown on the dashboard trend.
const statsDays = 7

// StatsService computes aggregate statistics for the dashboard.
type StatsService struct {
	db database.Database
}

func NewStatsService(db database.Database) *StatsService {
	return &StatsService{db: db}
}

// Stats returns totals, a zero-filled last-7-days trend, per-extension
// counts and the unresolved error count.
func (s *StatsService) Stats() (*model.Stats, error) {
	return s.db.Stats(statsDays)
}
