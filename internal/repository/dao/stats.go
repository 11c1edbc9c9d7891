package dao

import (
	"context"

	"gorm.io/gorm"
)

// ProductQuantity is a DrinkSale rollup row.
type ProductQuantity struct {
	Name     string
	Quantity int
}

type StatsDAO struct {
	db *gorm.DB
}

func NewStatsDAO(db *gorm.DB) *StatsDAO {
	return &StatsDAO{
		db: db,
	}
}

func (d *StatsDAO) Revenue(ctx context.Context, eventID uint) (int, error) {
	var revenue int

	err := d.db.WithContext(ctx).Model(&Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("event_id = ?", eventID).
		Scan(&revenue).Error
	if err != nil {
		return 0, err
	}

	return revenue, nil
}

func (d *StatsDAO) OrderCount(ctx context.Context, eventID uint) (int, error) {
	var count int64

	err := d.db.WithContext(ctx).Model(&Order{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func (d *StatsDAO) ShotsTotal(ctx context.Context, eventID uint) (int, error) {
	var total int

	err := d.db.WithContext(ctx).Model(&ShotLog{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("event_id = ?", eventID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

// ProductQuantities sums DrinkSale quantities per product, largest first and
// ties by name. limit <= 0 returns every product.
func (d *StatsDAO) ProductQuantities(ctx context.Context, eventID uint, limit int) ([]ProductQuantity, error) {
	rows := []ProductQuantity{}

	query := d.db.WithContext(ctx).Model(&DrinkSale{}).
		Select("drink_sales.name AS name, SUM(drink_sales.quantity) AS quantity").
		Joins("JOIN orders ON orders.id = drink_sales.order_id").
		Where("orders.event_id = ?", eventID).
		Group("drink_sales.name").
		Order("quantity DESC").
		Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
