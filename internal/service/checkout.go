package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/cart"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/catalog"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository"
)

var (
	ErrOrderNotFound    = repository.ErrOrderNotFound
	ErrUnknownCartItems = errors.New("cart contains products that are no longer sold")
	ErrCartBusy         = cart.ErrBusy
)

type OrderRepository interface {
	CreateWithLog(ctx context.Context, order domain.Order, log domain.OrderLog) (domain.Order, domain.OrderLog, error)
	List(ctx context.Context, eventID uint, limit int) ([]domain.Order, error)
	Delete(ctx context.Context, eventID, orderID uint) error
}

// AuditPublisher forwards committed audit entries. Delivery is best effort
// and never fails the operation that produced the entry.
type AuditPublisher interface {
	PublishOrderLog(ctx context.Context, log domain.OrderLog)
	PublishShotLog(ctx context.Context, log domain.ShotLog)
}

type CheckoutService struct {
	repo      OrderRepository
	store     cart.Store
	publisher AuditPublisher
	now       func() time.Time
}

func NewCheckoutService(repo OrderRepository, store cart.Store, publisher AuditPublisher) *CheckoutService {
	return &CheckoutService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Checkout turns the session's cart into an order. It returns nil and writes
// nothing when the cart is empty. Prices are taken from the catalog as it is
// now. Checkouts of one cart run one at a time; a second one finds the cart
// already emptied. Only the names that went into the order are removed from
// the cart, and only after the order and its log are committed.
func (s *CheckoutService) Checkout(ctx context.Context, event domain.Event, sessionID string, meta domain.RequestMeta) (*domain.Order, error) {
	key := cart.Key{SessionID: sessionID, EventID: event.ID}

	unlock, err := s.store.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("s.store.Lock -> %w", err)
	}
	defer unlock()

	names, err := s.store.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("s.store.Read -> %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	order, log, err := buildOrder(event, names, catalog.Index(catalog.Resolve(event.KassensystemSettings)))
	if err != nil {
		return nil, err
	}
	order.Timestamp = s.now()
	log.Actor = meta.Actor
	log.UserAgent = meta.UserAgent

	created, createdLog, err := s.repo.CreateWithLog(ctx, order, log)
	if err != nil {
		return nil, fmt.Errorf("s.repo.CreateWithLog -> %w", err)
	}

	// The order is committed at this point. A failed trim leaves a stale
	// cart, which is preferable to reporting a recorded sale as failed.
	if err = s.store.TrimFront(ctx, key, len(names)); err != nil {
		zap.L().Error("failed to remove checked out items from cart",
			zap.String("cart", key.String()),
			zap.Uint("orderID", created.ID),
			zap.Error(err),
		)
	}

	s.publisher.PublishOrderLog(ctx, createdLog)

	return &created, nil
}

func buildOrder(event domain.Event, names []string, index map[string]domain.CatalogItem) (domain.Order, domain.OrderLog, error) {
	unknown := map[string]struct{}{}
	for _, name := range names {
		if _, ok := index[name]; !ok {
			unknown[name] = struct{}{}
		}
	}
	if len(unknown) > 0 {
		list := make([]string, 0, len(unknown))
		for name := range unknown {
			list = append(list, name)
		}
		sort.Strings(list)
		return domain.Order{}, domain.OrderLog{}, fmt.Errorf("%w: %s", ErrUnknownCartItems, strings.Join(list, ", "))
	}

	summary := Summarize(names, index)

	order := domain.Order{
		EventID:    event.ID,
		Total:      summary.Total,
		Items:      make([]domain.OrderItem, 0, len(names)),
		DrinkSales: make([]domain.DrinkSale, 0, len(summary.Items)),
	}
	for _, name := range names {
		order.Items = append(order.Items, domain.OrderItem{Name: name, Price: index[name].EffectivePrice()})
	}

	log := domain.OrderLog{
		EventID: event.ID,
		Total:   summary.Total,
		Items:   make([]domain.OrderLogItem, 0, len(summary.Items)),
	}
	for _, line := range summary.Items {
		order.DrinkSales = append(order.DrinkSales, domain.DrinkSale{Name: line.Name, Quantity: line.Quantity})
		log.Items = append(log.Items, domain.OrderLogItem{
			Name:  line.Name,
			Label: line.Label,
			Qty:   line.Quantity,
			Price: line.UnitPrice,
		})
	}

	return order, log, nil
}

func (s *CheckoutService) ListOrders(ctx context.Context, eventID uint, limit int) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return orders, nil
}

// DeleteOrder removes an order with its items and sales. Its audit log entry
// survives without the order reference.
func (s *CheckoutService) DeleteOrder(ctx context.Context, eventID, orderID uint) error {
	if err := s.repo.Delete(ctx, eventID, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}

		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
