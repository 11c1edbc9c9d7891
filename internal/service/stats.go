package service

import (
	"context"
	"fmt"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

const topN = 5

type StatsRepository interface {
	Revenue(ctx context.Context, eventID uint) (int, error)
	OrderCount(ctx context.Context, eventID uint) (int, error)
	ShotsTotal(ctx context.Context, eventID uint) (int, error)
	ProductSales(ctx context.Context, eventID uint, limit int) ([]domain.ProductSales, error)
}

type StatsService struct {
	repo  StatsRepository
	teams TeamRepository
}

func NewStatsService(repo StatsRepository, teams TeamRepository) *StatsService {
	return &StatsService{
		repo:  repo,
		teams: teams,
	}
}

// Stats rolls up an event's sales and scores. Missing data yields zeros and
// empty lists.
func (s *StatsService) Stats(ctx context.Context, eventID uint) (domain.Stats, error) {
	revenue, err := s.repo.Revenue(ctx, eventID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.repo.Revenue -> %w", err)
	}

	orderCount, err := s.repo.OrderCount(ctx, eventID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.repo.OrderCount -> %w", err)
	}

	shotsTotal, err := s.repo.ShotsTotal(ctx, eventID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.repo.ShotsTotal -> %w", err)
	}

	sales, err := s.repo.ProductSales(ctx, eventID, 0)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.repo.ProductSales -> %w", err)
	}

	teams, err := s.teams.Leaderboard(ctx, eventID, topN)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.teams.Leaderboard -> %w", err)
	}

	top := make([]domain.ProductSales, 0, topN)
	for i := 0; i < len(sales) && i < topN; i++ {
		top = append(top, sales[i])
	}
	if sales == nil {
		sales = []domain.ProductSales{}
	}
	if teams == nil {
		teams = []domain.Team{}
	}

	return domain.Stats{
		Revenue:      revenue,
		OrderCount:   orderCount,
		ShotsTotal:   shotsTotal,
		TopProducts:  top,
		TopTeams:     teams,
		ProductSales: sales,
	}, nil
}
