package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
)

var ErrOrderNotFound = dao.ErrOrderNotFound

type OrderDAO interface {
	InsertCheckout(ctx context.Context, order dao.Order, log dao.OrderLog) (dao.Order, dao.OrderLog, error)
	List(ctx context.Context, eventID uint, limit int) ([]dao.Order, error)
	Delete(ctx context.Context, eventID, orderID uint) error
}

type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

// CreateWithLog persists the order, its rows and the audit entry atomically.
func (r *OrderRepository) CreateWithLog(ctx context.Context, order domain.Order, log domain.OrderLog) (domain.Order, domain.OrderLog, error) {
	items, err := json.Marshal(log.Items)
	if err != nil {
		return domain.Order{}, domain.OrderLog{}, fmt.Errorf("json.Marshal -> %w", err)
	}

	o := dao.Order{
		EventID:    order.EventID,
		Timestamp:  order.Timestamp,
		Total:      order.Total,
		Items:      make([]dao.OrderItem, 0, len(order.Items)),
		DrinkSales: make([]dao.DrinkSale, 0, len(order.DrinkSales)),
	}
	for _, i := range order.Items {
		o.Items = append(o.Items, dao.OrderItem{Name: i.Name, Price: i.Price})
	}
	for _, s := range order.DrinkSales {
		o.DrinkSales = append(o.DrinkSales, dao.DrinkSale{Name: s.Name, Quantity: s.Quantity})
	}

	created, createdLog, err := r.dao.InsertCheckout(ctx, o, dao.OrderLog{
		Total:     log.Total,
		Items:     datatypes.JSON(items),
		Actor:     log.Actor,
		UserAgent: log.UserAgent,
	})
	if err != nil {
		return domain.Order{}, domain.OrderLog{}, fmt.Errorf("r.dao.InsertCheckout -> %w", err)
	}

	return orderToDomain(created), orderLogToDomain(createdLog), nil
}

func (r *OrderRepository) List(ctx context.Context, eventID uint, limit int) ([]domain.Order, error) {
	orders, err := r.dao.List(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	result := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, orderToDomain(o))
	}

	return result, nil
}

func (r *OrderRepository) Delete(ctx context.Context, eventID, orderID uint) error {
	if err := r.dao.Delete(ctx, eventID, orderID); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func orderToDomain(o dao.Order) domain.Order {
	order := domain.Order{
		ID:         o.ID,
		EventID:    o.EventID,
		Timestamp:  o.Timestamp,
		Total:      o.Total,
		Items:      make([]domain.OrderItem, 0, len(o.Items)),
		DrinkSales: make([]domain.DrinkSale, 0, len(o.DrinkSales)),
	}
	for _, i := range o.Items {
		order.Items = append(order.Items, domain.OrderItem{ID: i.ID, OrderID: i.OrderID, Name: i.Name, Price: i.Price})
	}
	for _, s := range o.DrinkSales {
		order.DrinkSales = append(order.DrinkSales, domain.DrinkSale{ID: s.ID, OrderID: s.OrderID, Name: s.Name, Quantity: s.Quantity})
	}

	return order
}
