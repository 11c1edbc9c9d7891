package service

import (
	"context"
	"fmt"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/cart"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/catalog"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

type CartService struct {
	store cart.Store
}

func NewCartService(store cart.Store) *CartService {
	return &CartService{
		store: store,
	}
}

// Catalog returns the event's products in display order.
func (s *CartService) Catalog(event domain.Event) []domain.CatalogItem {
	return catalog.Resolve(event.KassensystemSettings)
}

// Sections groups the event's catalog for the cashier or the price list.
func (s *CartService) Sections(event domain.Event, ctx catalog.Context) []domain.CatalogSection {
	return catalog.Sections(event.KassensystemSettings, s.Catalog(event), ctx)
}

// AddItem appends name to the session's cart. Names outside the event's
// current catalog are ignored and reported with added=false.
func (s *CartService) AddItem(ctx context.Context, event domain.Event, sessionID, name string) (bool, domain.Cart, error) {
	items := s.Catalog(event)
	key := cart.Key{SessionID: sessionID, EventID: event.ID}

	added := false
	if _, ok := catalog.Index(items)[name]; ok {
		if err := s.store.Append(ctx, key, name); err != nil {
			return false, domain.Cart{}, fmt.Errorf("s.store.Append -> %w", err)
		}
		added = true
	}

	c, err := s.read(ctx, key, items)
	if err != nil {
		return false, domain.Cart{}, err
	}

	return added, c, nil
}

// RemoveLast drops the most recent tap. An empty cart stays empty. It waits
// for a running checkout so a tap that is being charged is not removed.
func (s *CartService) RemoveLast(ctx context.Context, event domain.Event, sessionID string) (domain.Cart, error) {
	key := cart.Key{SessionID: sessionID, EventID: event.ID}

	unlock, err := s.store.Lock(ctx, key)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("s.store.Lock -> %w", err)
	}
	defer unlock()

	if err = s.store.PopLast(ctx, key); err != nil {
		return domain.Cart{}, fmt.Errorf("s.store.PopLast -> %w", err)
	}

	return s.read(ctx, key, s.Catalog(event))
}

func (s *CartService) ClearCart(ctx context.Context, event domain.Event, sessionID string) error {
	key := cart.Key{SessionID: sessionID, EventID: event.ID}

	unlock, err := s.store.Lock(ctx, key)
	if err != nil {
		return fmt.Errorf("s.store.Lock -> %w", err)
	}
	defer unlock()

	if err = s.store.Clear(ctx, key); err != nil {
		return fmt.Errorf("s.store.Clear -> %w", err)
	}

	return nil
}

func (s *CartService) GetCart(ctx context.Context, event domain.Event, sessionID string) (domain.Cart, error) {
	return s.read(ctx, cart.Key{SessionID: sessionID, EventID: event.ID}, s.Catalog(event))
}

func (s *CartService) read(ctx context.Context, key cart.Key, items []domain.CatalogItem) (domain.Cart, error) {
	names, err := s.store.Read(ctx, key)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("s.store.Read -> %w", err)
	}

	return Summarize(names, catalog.Index(items)), nil
}

// Summarize groups cart names into lines in first-seen order. Quantities and
// totals are derived here and never stored. A name no longer in the catalog
// is listed at price 0 so the cashier can still see and remove it.
func Summarize(names []string, index map[string]domain.CatalogItem) domain.Cart {
	c := domain.Cart{Items: []domain.CartLine{}}
	positions := make(map[string]int, len(names))

	for _, name := range names {
		item, known := index[name]
		unit := 0
		label := name
		if known {
			unit = item.EffectivePrice()
			label = item.Label
		}

		pos, seen := positions[name]
		if !seen {
			pos = len(c.Items)
			positions[name] = pos
			c.Items = append(c.Items, domain.CartLine{Name: name, Label: label, UnitPrice: unit})
		}

		c.Items[pos].Quantity++
		c.Items[pos].LineTotal += unit
		c.Total += unit
		c.ItemCount++
	}

	return c
}
