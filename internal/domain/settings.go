package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SettingsVersion is the layout written by this version of the service.
// Blobs stored with an older version are upgraded by ApplyDefaults on load.
const SettingsVersion = 1

const (
	DefaultDepotPrice       = 2
	DefaultLeaderboardLimit = 10
	DefaultCategory         = "Standard"
)

// FlexInt decodes JSON numbers and numeric strings. Any other value leaves
// Valid false instead of failing the whole document.
type FlexInt struct {
	Value int
	Valid bool
}

func NewFlexInt(v int) FlexInt {
	return FlexInt{Value: v, Valid: true}
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}

	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}

	if n, err := strconv.Atoi(s); err == nil {
		f.Value, f.Valid = n, true
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(fl) && !math.IsInf(fl, 0) {
		f.Value, f.Valid = int(fl), true
	}

	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// FlexBool decodes JSON booleans, numbers and the strings older forms
// posted ("on", "1", "true", "yes"). Anything else is false.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}

	switch strings.ToLower(s) {
	case "true", "on", "yes":
		*f = true
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*f = n != 0
		return nil
	}

	*f = false
	return nil
}

// ItemConfig is one product as stored in kassensystem_settings.items.
type ItemConfig struct {
	Name     string   `json:"name"`
	Label    string   `json:"label,omitempty"`
	Price    FlexInt  `json:"price"`
	CSSClass string   `json:"css_class,omitempty"`
	Color    string   `json:"color,omitempty"`
	Category string   `json:"category,omitempty"`
	HasDepot FlexBool `json:"has_depot,omitempty"`
	Priority *FlexInt `json:"priority,omitempty"`
}

// Visibility of a category per display context. Missing keys default to visible.
type Visibility struct {
	Cashier   bool `json:"cashier"`
	PriceList bool `json:"price_list"`
}

func (v *Visibility) UnmarshalJSON(b []byte) error {
	type plain Visibility
	p := plain{Cashier: true, PriceList: true}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*v = Visibility(p)
	return nil
}

type KassensystemSettings struct {
	Items              []ItemConfig          `json:"items"`
	DepotPrice         FlexInt               `json:"depot_price"`
	CategoryOrder      []string              `json:"category_order,omitempty"`
	CategoryVisibility map[string]Visibility `json:"category_visibility,omitempty"`
}

// UnmarshalJSON skips items that cannot be decoded instead of failing the
// whole catalog.
func (k *KassensystemSettings) UnmarshalJSON(b []byte) error {
	type plain KassensystemSettings
	var raw struct {
		plain
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*k = KassensystemSettings(raw.plain)
	k.Items = nil
	if raw.Items == nil {
		return nil
	}

	k.Items = make([]ItemConfig, 0, len(raw.Items))
	for _, r := range raw.Items {
		var item ItemConfig
		if err := json.Unmarshal(r, &item); err != nil {
			continue
		}
		k.Items = append(k.Items, item)
	}

	return nil
}

// EffectiveDepotPrice returns the configured deposit, defaulted and clamped.
func (k KassensystemSettings) EffectiveDepotPrice() int {
	if !k.DepotPrice.Valid {
		return DefaultDepotPrice
	}
	if k.DepotPrice.Value < 0 {
		return 0
	}
	return k.DepotPrice.Value
}

func (k *KassensystemSettings) ApplyDefaults() {
	k.DepotPrice = NewFlexInt(k.EffectiveDepotPrice())
}

type PriceListSettings struct {
	Title   string `json:"title,omitempty"`
	Columns int    `json:"columns,omitempty"`
}

type SharedSettings struct {
	AutoReloadOnAdd *bool             `json:"auto_reload_on_add,omitempty"`
	PriceList       PriceListSettings `json:"price_list"`
}

// AutoReload defaults to true for events created before the flag existed.
func (s SharedSettings) AutoReload() bool {
	return s.AutoReloadOnAdd == nil || *s.AutoReloadOnAdd
}

func (s *SharedSettings) ApplyDefaults() {
	if s.AutoReloadOnAdd == nil {
		enabled := true
		s.AutoReloadOnAdd = &enabled
	}
	if s.PriceList.Title == "" {
		s.PriceList.Title = "Preisliste"
	}
	if s.PriceList.Columns <= 0 {
		s.PriceList.Columns = 2
	}
}

type ShotcounterSettings struct {
	PrimaryColor     string `json:"primary_color,omitempty"`
	SecondaryColor   string `json:"secondary_color,omitempty"`
	BackgroundColor  string `json:"background_color,omitempty"`
	TitleSize        int    `json:"title_size,omitempty"`
	RowSize          int    `json:"row_size,omitempty"`
	LeaderboardLimit int    `json:"leaderboard_limit,omitempty"`
	BackgroundImage  string `json:"background_image,omitempty"`
}

func (s *ShotcounterSettings) ApplyDefaults() {
	if s.PrimaryColor == "" {
		s.PrimaryColor = "#ff5722"
	}
	if s.SecondaryColor == "" {
		s.SecondaryColor = "#90caf9"
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = "#121212"
	}
	if s.TitleSize <= 0 {
		s.TitleSize = 48
	}
	if s.RowSize <= 0 {
		s.RowSize = 28
	}
	if s.LeaderboardLimit <= 0 {
		s.LeaderboardLimit = DefaultLeaderboardLimit
	}
}
