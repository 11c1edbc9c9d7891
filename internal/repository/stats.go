package repository

import (
	"context"
	"fmt"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
)

type StatsDAO interface {
	Revenue(ctx context.Context, eventID uint) (int, error)
	OrderCount(ctx context.Context, eventID uint) (int, error)
	ShotsTotal(ctx context.Context, eventID uint) (int, error)
	ProductQuantities(ctx context.Context, eventID uint, limit int) ([]dao.ProductQuantity, error)
}

type StatsRepository struct {
	dao StatsDAO
}

func NewStatsRepository(dao StatsDAO) *StatsRepository {
	return &StatsRepository{
		dao: dao,
	}
}

func (r *StatsRepository) Revenue(ctx context.Context, eventID uint) (int, error) {
	revenue, err := r.dao.Revenue(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Revenue -> %w", err)
	}

	return revenue, nil
}

func (r *StatsRepository) OrderCount(ctx context.Context, eventID uint) (int, error) {
	count, err := r.dao.OrderCount(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.OrderCount -> %w", err)
	}

	return count, nil
}

func (r *StatsRepository) ShotsTotal(ctx context.Context, eventID uint) (int, error) {
	total, err := r.dao.ShotsTotal(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ShotsTotal -> %w", err)
	}

	return total, nil
}

func (r *StatsRepository) ProductSales(ctx context.Context, eventID uint, limit int) ([]domain.ProductSales, error) {
	rows, err := r.dao.ProductQuantities(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ProductQuantities -> %w", err)
	}

	result := make([]domain.ProductSales, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.ProductSales{Name: row.Name, Quantity: row.Quantity})
	}

	return result, nil
}
