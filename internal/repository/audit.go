package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
)

type AuditDAO interface {
	ListOrderLogs(ctx context.Context, eventID uint, limit int) ([]dao.OrderLog, error)
	ListShotLogs(ctx context.Context, eventID uint, limit int) ([]dao.ShotLog, error)
}

type AuditRepository struct {
	dao AuditDAO
}

func NewAuditRepository(dao AuditDAO) *AuditRepository {
	return &AuditRepository{
		dao: dao,
	}
}

func (r *AuditRepository) ListOrderLogs(ctx context.Context, eventID uint, limit int) ([]domain.OrderLog, error) {
	logs, err := r.dao.ListOrderLogs(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListOrderLogs -> %w", err)
	}

	result := make([]domain.OrderLog, 0, len(logs))
	for _, l := range logs {
		result = append(result, orderLogToDomain(l))
	}

	return result, nil
}

func (r *AuditRepository) ListShotLogs(ctx context.Context, eventID uint, limit int) ([]domain.ShotLog, error) {
	logs, err := r.dao.ListShotLogs(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListShotLogs -> %w", err)
	}

	result := make([]domain.ShotLog, 0, len(logs))
	for _, l := range logs {
		result = append(result, shotLogToDomain(l))
	}

	return result, nil
}

func orderLogToDomain(l dao.OrderLog) domain.OrderLog {
	log := domain.OrderLog{
		ID:        l.ID,
		EventID:   l.EventID,
		OrderID:   l.OrderID,
		Total:     l.Total,
		Items:     []domain.OrderLogItem{},
		Actor:     l.Actor,
		UserAgent: l.UserAgent,
		CreatedAt: l.CreatedAt,
	}

	if len(l.Items) > 0 {
		if err := json.Unmarshal(l.Items, &log.Items); err != nil {
			zap.L().Warn("unreadable order log items", zap.Uint("orderLogID", l.ID), zap.Error(err))
		}
	}

	return log
}

func shotLogToDomain(l dao.ShotLog) domain.ShotLog {
	return domain.ShotLog{
		ID:        l.ID,
		EventID:   l.EventID,
		TeamID:    l.TeamID,
		TeamName:  l.TeamName,
		Amount:    l.Amount,
		Actor:     l.Actor,
		UserAgent: l.UserAgent,
		CreatedAt: l.CreatedAt,
	}
}
