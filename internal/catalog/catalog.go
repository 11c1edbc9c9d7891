// Package catalog turns an event's stored product configuration into the
// priced, ordered list of buttons a cashier can tap.
package catalog

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

// FallbackColor is used when neither the item nor its css class names a colour.
const FallbackColor = "#455a64"

// Context selects which visibility flag of a category applies.
type Context int

const (
	ContextCashier Context = iota
	ContextPriceList
)

var defaultColors = map[string]string{
	"suess":          "#1e88e5",
	"bier":           "#ffd900",
	"wein":           "#6a1b9a",
	"flasche":        "#5b7c00",
	"gross":          "#ff4cc3",
	"depot":          "#576268",
	"Weinglassdepot": "#fa8d45",
	"kaffee":         "#795548",
	"shot":           "#c2185b",
}

// DefaultItems returns a fresh copy of the built-in catalog.
func DefaultItems() []domain.ItemConfig {
	return []domain.ItemConfig{
		{Name: "Süssgetränke", Label: "Süssgetränke", Price: domain.NewFlexInt(6), CSSClass: "suess"},
		{Name: "Bier", Label: "Bier / Mate / Red Bull / Smirnoff", Price: domain.NewFlexInt(7), CSSClass: "bier"},
		{Name: "Wein", Label: "Wein", Price: domain.NewFlexInt(7), CSSClass: "wein"},
		{Name: "Weinflasche 0.7", Label: "Weinflasche", Price: domain.NewFlexInt(22), CSSClass: "flasche"},
		{Name: "Drink 10", Label: "Drink 10", Price: domain.NewFlexInt(12), CSSClass: "gross"},
		{Name: "Depot rein", Label: "Depot rein", Price: domain.NewFlexInt(-2), CSSClass: "depot"},
		{Name: "Weinglassdepot", Label: "Weinglas Depot", Price: domain.NewFlexInt(2), CSSClass: "Weinglassdepot"},
		{Name: "Kaffee", Label: "Kaffee", Price: domain.NewFlexInt(3), CSSClass: "kaffee"},
		{Name: "Shot", Label: "Shot", Price: domain.NewFlexInt(5), CSSClass: "shot"},
	}
}

// DefaultSettings is the configuration a new event starts with.
func DefaultSettings() domain.KassensystemSettings {
	settings, _ := ValidateAndNormalize(domain.KassensystemSettings{Items: DefaultItems()})
	return settings
}

// ParseSettings decodes an admin supplied kassensystem_settings document.
func ParseSettings(raw []byte) (domain.KassensystemSettings, error) {
	var settings domain.KassensystemSettings
	if len(strings.TrimSpace(string(raw))) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.KassensystemSettings{}, domain.NewValidationError("invalid kassensystem settings: %v", err)
	}
	return settings, nil
}

// Resolve returns the purchasable items of an event in display order. An
// empty or unusable configuration yields the built-in catalog.
func Resolve(settings domain.KassensystemSettings) []domain.CatalogItem {
	depot := settings.EffectiveDepotPrice()

	items := resolveItems(settings.Items, depot)
	if len(items) == 0 {
		items = resolveItems(DefaultItems(), depot)
	}

	return items
}

// Index maps item names to resolved items.
func Index(items []domain.CatalogItem) map[string]domain.CatalogItem {
	index := make(map[string]domain.CatalogItem, len(items))
	for _, item := range items {
		index[item.Name] = item
	}
	return index
}

func resolveItems(raw []domain.ItemConfig, depot int) []domain.CatalogItem {
	seen := make(map[string]struct{}, len(raw))
	items := make([]domain.CatalogItem, 0, len(raw))

	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		item := domain.CatalogItem{
			Name:       name,
			Label:      strings.TrimSpace(r.Label),
			Price:      r.Price.Value,
			CSSClass:   strings.TrimSpace(r.CSSClass),
			Color:      strings.TrimSpace(r.Color),
			Category:   strings.TrimSpace(r.Category),
			HasDepot:   bool(r.HasDepot),
			DepotPrice: depot,
		}
		if !r.Price.Valid {
			item.Price = 0
		}
		if item.Label == "" {
			item.Label = name
		}
		if item.Category == "" {
			item.Category = domain.DefaultCategory
		}
		if item.Color == "" {
			item.Color = colorFor(item.CSSClass)
		}
		if r.Priority != nil && r.Priority.Valid {
			p := r.Priority.Value
			item.Priority = &p
		}

		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return lessPriority(items[i].Priority, items[j].Priority)
	})

	return items
}

func colorFor(cssClass string) string {
	if c, ok := defaultColors[cssClass]; ok {
		return c
	}
	return FallbackColor
}

// items without a priority sort after all prioritised ones
func lessPriority(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

// ValidateAndNormalize checks an admin write and fills in the derived
// category metadata. Duplicate product names are rejected.
func ValidateAndNormalize(settings domain.KassensystemSettings) (domain.KassensystemSettings, error) {
	counts := make(map[string]int, len(settings.Items))
	var duplicates []string
	items := make([]domain.ItemConfig, 0, len(settings.Items))

	for _, item := range settings.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}

		counts[name]++
		if counts[name] == 2 {
			duplicates = append(duplicates, name)
		}

		item.Name = name
		item.Label = strings.TrimSpace(item.Label)
		if item.Label == "" {
			item.Label = name
		}
		item.Category = strings.TrimSpace(item.Category)
		if item.Category == "" {
			item.Category = domain.DefaultCategory
		}
		item.CSSClass = strings.TrimSpace(item.CSSClass)
		item.Color = strings.TrimSpace(item.Color)
		item.Price = domain.NewFlexInt(item.Price.Value)
		if item.Priority != nil && !item.Priority.Valid {
			item.Priority = nil
		}

		items = append(items, item)
	}

	if len(duplicates) > 0 {
		return domain.KassensystemSettings{}, domain.NewValidationError(
			"duplicate product names: %s", strings.Join(duplicates, ", "))
	}

	if len(items) == 0 {
		items = DefaultItems()
		for i := range items {
			items[i].Category = domain.DefaultCategory
		}
	}

	categories := make([]string, 0, len(items))
	for _, item := range items {
		categories = append(categories, item.Category)
	}

	out := domain.KassensystemSettings{
		Items:              items,
		DepotPrice:         domain.NewFlexInt(settings.EffectiveDepotPrice()),
		CategoryOrder:      mergeCategoryOrder(settings.CategoryOrder, categories),
		CategoryVisibility: make(map[string]domain.Visibility),
	}
	for _, c := range out.CategoryOrder {
		v, ok := settings.CategoryVisibility[c]
		if !ok {
			v = domain.Visibility{Cashier: true, PriceList: true}
		}
		out.CategoryVisibility[c] = v
	}

	return out, nil
}

// mergeCategoryOrder keeps the supplied order and appends categories seen in
// the items but missing from it, in first-seen order.
func mergeCategoryOrder(supplied, seen []string) []string {
	order := make([]string, 0, len(supplied)+len(seen))
	known := make(map[string]struct{}, len(supplied)+len(seen))

	add := func(c string) {
		c = strings.TrimSpace(c)
		if c == "" {
			return
		}
		if _, ok := known[c]; ok {
			return
		}
		known[c] = struct{}{}
		order = append(order, c)
	}

	for _, c := range supplied {
		add(c)
	}
	for _, c := range seen {
		add(c)
	}

	return order
}

// Sections groups resolved items by category for one display context,
// dropping hidden and empty categories.
func Sections(settings domain.KassensystemSettings, items []domain.CatalogItem, ctx Context) []domain.CatalogSection {
	grouped := make(map[string][]domain.CatalogItem)
	seen := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := grouped[item.Category]; !ok {
			seen = append(seen, item.Category)
		}
		grouped[item.Category] = append(grouped[item.Category], item)
	}

	sections := make([]domain.CatalogSection, 0, len(grouped))
	for _, c := range mergeCategoryOrder(settings.CategoryOrder, seen) {
		group := grouped[c]
		if len(group) == 0 || !visible(settings.CategoryVisibility, c, ctx) {
			continue
		}
		sections = append(sections, domain.CatalogSection{Category: c, Items: group})
	}

	return sections
}

func visible(visibility map[string]domain.Visibility, category string, ctx Context) bool {
	v, ok := visibility[category]
	if !ok {
		return true
	}

	switch ctx {
	case ContextCashier:
		return v.Cashier
	case ContextPriceList:
		return v.PriceList
	default:
		return true
	}
}
