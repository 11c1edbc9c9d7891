package service

import (
	"context"
	"fmt"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

type AuditRepository interface {
	ListOrderLogs(ctx context.Context, eventID uint, limit int) ([]domain.OrderLog, error)
	ListShotLogs(ctx context.Context, eventID uint, limit int) ([]domain.ShotLog, error)
}

// AuditService reads the append-only order and shot logs, newest first.
type AuditService struct {
	repo AuditRepository
}

func NewAuditService(repo AuditRepository) *AuditService {
	return &AuditService{
		repo: repo,
	}
}

func (s *AuditService) ListOrderLogs(ctx context.Context, eventID uint, limit int) ([]domain.OrderLog, error) {
	logs, err := s.repo.ListOrderLogs(ctx, eventID, clampLogLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListOrderLogs -> %w", err)
	}

	return logs, nil
}

func (s *AuditService) ListShotLogs(ctx context.Context, eventID uint, limit int) ([]domain.ShotLog, error) {
	logs, err := s.repo.ListShotLogs(ctx, eventID, clampLogLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListShotLogs -> %w", err)
	}

	return logs, nil
}

func clampLogLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLogLimit
	case limit > maxLogLimit:
		return maxLogLimit
	default:
		return limit
	}
}
