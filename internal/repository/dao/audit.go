package dao

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderLog and ShotLog are append-only. Nothing in this package updates them
// except to detach a deleted order or team.

type OrderLog struct {
	ID uint `gorm:"primaryKey"`

	EventID   uint  `gorm:"not null;index"`
	OrderID   *uint `gorm:"index"`
	Total     int   `gorm:"not null"`
	Items     datatypes.JSON
	Actor     string
	UserAgent string

	CreatedAt time.Time `gorm:"not null;index"`
}

type ShotLog struct {
	ID uint `gorm:"primaryKey"`

	EventID   uint   `gorm:"not null;index"`
	TeamID    *uint  `gorm:"index"`
	TeamName  string `gorm:"not null"`
	Amount    int    `gorm:"not null"`
	Actor     string
	UserAgent string

	CreatedAt time.Time `gorm:"not null;index"`
}

type AuditDAO struct {
	db *gorm.DB
}

func NewAuditDAO(db *gorm.DB) *AuditDAO {
	return &AuditDAO{
		db: db,
	}
}

func (d *AuditDAO) ListOrderLogs(ctx context.Context, eventID uint, limit int) ([]OrderLog, error) {
	var logs []OrderLog

	query := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}

	return logs, nil
}

func (d *AuditDAO) ListShotLogs(ctx context.Context, eventID uint, limit int) ([]ShotLog, error) {
	var logs []ShotLog

	query := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}

	return logs, nil
}
