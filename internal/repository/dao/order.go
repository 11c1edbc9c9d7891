package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Order struct {
	ID uint `gorm:"primaryKey"`

	EventID   uint      `gorm:"not null;index"`
	Timestamp time.Time `gorm:"not null;index"`
	Total     int       `gorm:"not null"`

	Items      []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
	DrinkSales []DrinkSale `gorm:"constraint:OnDelete:CASCADE"`
	Logs       []OrderLog  `gorm:"constraint:OnDelete:SET NULL"`
}

// OrderItem is one tap of the cart, kept in sequence.
type OrderItem struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID uint   `gorm:"not null;index"`
	Name    string `gorm:"not null"`
	Price   int    `gorm:"not null"`
}

// DrinkSale is the per-product quantity of one order.
type DrinkSale struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  uint   `gorm:"not null;index"`
	Name     string `gorm:"not null;index"`
	Quantity int    `gorm:"not null"`
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

// InsertCheckout stores an order with its items, sales and audit log as one
// unit. Either all rows are written or none.
func (d *OrderDAO) InsertCheckout(ctx context.Context, order Order, log OrderLog) (Order, OrderLog, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Logs").Create(&order).Error; err != nil {
			return err
		}

		log.EventID = order.EventID
		log.OrderID = &order.ID

		return tx.Create(&log).Error
	})
	if err != nil {
		return Order{}, OrderLog{}, err
	}

	return order, log, nil
}

func (d *OrderDAO) List(ctx context.Context, eventID uint, limit int) ([]Order, error) {
	var orders []Order

	query := d.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("DrinkSales", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("event_id = ?", eventID).
		Order("timestamp DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}

// Delete removes an order and its items and sales. Audit logs pointing at it
// are kept with a NULL order_id.
func (d *OrderDAO) Delete(ctx context.Context, eventID, orderID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order Order
		err := tx.Where("id = ? AND event_id = ?", orderID, eventID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		err = tx.Model(&OrderLog{}).
			Where("order_id = ?", orderID).
			Update("order_id", nil).Error
		if err != nil {
			return err
		}
		if err = tx.Where("order_id = ?", orderID).Delete(&DrinkSale{}).Error; err != nil {
			return err
		}
		if err = tx.Where("order_id = ?", orderID).Delete(&OrderItem{}).Error; err != nil {
			return err
		}

		return tx.Delete(&Order{}, orderID).Error
	})
}
