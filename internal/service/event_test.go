package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
)

func TestEventService_GetActiveEvent_None(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.events.GetActiveEvent(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveEvent)

	_, err = env.events.RequireActiveEvent(context.Background(), true, false)
	assert.ErrorIs(t, err, ErrNoActiveEvent)
}

func TestEventService_CreateEvent_Defaults(t *testing.T) {
	env := newTestEnv(t)

	event, err := env.events.CreateEvent(context.Background(), domain.Event{Name: "  Demo  ", KassensystemEnabled: true})
	require.NoError(t, err)

	assert.Equal(t, "Demo", event.Name)
	assert.False(t, event.IsActive)
	assert.Len(t, event.KassensystemSettings.Items, 9)
	assert.Equal(t, []string{domain.DefaultCategory}, event.KassensystemSettings.CategoryOrder)
	assert.True(t, event.SharedSettings.AutoReload())
	assert.Equal(t, domain.DefaultLeaderboardLimit, event.ShotcounterSettings.LeaderboardLimit)
	assert.Equal(t, domain.SettingsVersion, event.SettingsVersion)

	_, err = env.events.CreateEvent(context.Background(), domain.Event{Name: "   "})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEventService_ActivateEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.activeEvent(t, "A")
	b, err := env.events.CreateEvent(ctx, domain.Event{Name: "B", KassensystemEnabled: true})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = env.events.ActivateEvent(ctx, b.ID)
		require.NoError(t, err)
	}

	active, err := env.events.GetActiveEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, active.ID)

	a, err = env.events.GetEvent(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, a.IsActive)
	assert.EqualValues(t, 1, env.count(t, &dao.Event{}, "is_active = ?", true))

	_, err = env.events.ActivateEvent(ctx, 999)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventService_ActivateUnarchives(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	event := env.activeEvent(t, "A")

	archived, err := env.events.ArchiveEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.False(t, archived.IsActive)

	_, err = env.events.GetActiveEvent(ctx)
	assert.ErrorIs(t, err, ErrNoActiveEvent)

	listed, err := env.events.ListEvents(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, listed)

	unarchived, err := env.events.UnarchiveEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, unarchived.IsArchived)
	assert.False(t, unarchived.IsActive)

	_, err = env.events.ArchiveEvent(ctx, event.ID)
	require.NoError(t, err)
	activated, err := env.events.ActivateEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	assert.False(t, activated.IsArchived)
}

func TestEventService_RequireActiveEvent_SubsystemDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	event, err := env.events.CreateEvent(ctx, domain.Event{Name: "POS only", KassensystemEnabled: true})
	require.NoError(t, err)
	_, err = env.events.ActivateEvent(ctx, event.ID)
	require.NoError(t, err)

	_, err = env.events.RequireActiveEvent(ctx, true, false)
	assert.NoError(t, err)

	_, err = env.events.RequireActiveEvent(ctx, false, true)
	assert.ErrorIs(t, err, ErrSubsystemDisabled)
}

func TestEventService_UpdateEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.activeEvent(t, "A")

	updated, err := env.events.UpdateEvent(ctx, event.ID, ptr(event.Revision), domain.EventUpdate{
		Name: ptr("Renamed"),
		KassensystemSettings: &domain.KassensystemSettings{
			Items: []domain.ItemConfig{
				{Name: "Bier", Price: domain.NewFlexInt(7), Category: "Bar"},
				{Name: "Cola", Price: domain.NewFlexInt(5)},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, event.Revision+1, updated.Revision)
	assert.Len(t, updated.KassensystemSettings.Items, 2)
	assert.Equal(t, []string{"Bar", domain.DefaultCategory}, updated.KassensystemSettings.CategoryOrder)
	assert.True(t, updated.IsActive)

	// a stale revision is rejected
	_, err = env.events.UpdateEvent(ctx, event.ID, ptr(event.Revision), domain.EventUpdate{Name: ptr("Stale")})
	assert.ErrorIs(t, err, ErrEventConflict)

	// duplicate product names are rejected and nothing is written
	_, err = env.events.UpdateEvent(ctx, event.ID, nil, domain.EventUpdate{
		KassensystemSettings: &domain.KassensystemSettings{
			Items: []domain.ItemConfig{{Name: "Bier"}, {Name: "Bier"}},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "Bier")

	current, err := env.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Revision, current.Revision)
}

func TestEventService_ConcurrentCatalogEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.activeEvent(t, "A")

	// both editors loaded the same revision
	first, err := env.events.UpdateEvent(ctx, event.ID, ptr(event.Revision), domain.EventUpdate{
		KassensystemSettings: &domain.KassensystemSettings{Items: []domain.ItemConfig{{Name: "Bier"}}},
	})
	require.NoError(t, err)

	_, err = env.events.UpdateEvent(ctx, event.ID, ptr(event.Revision), domain.EventUpdate{
		KassensystemSettings: &domain.KassensystemSettings{Items: []domain.ItemConfig{{Name: "Wein"}}},
	})
	assert.ErrorIs(t, err, ErrEventConflict)

	current, err := env.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Revision, current.Revision)
	assert.Equal(t, "Bier", current.KassensystemSettings.Items[0].Name)
}

func TestEventService_LegacySettingsAreDefaulted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	legacy := dao.Event{
		Name:                 "legacy",
		KassensystemEnabled:  true,
		SharedSettings:       []byte(`{}`),
		KassensystemSettings: []byte(`{"items":[{"name":"Bier","price":"7"}],"depot_price":"x"}`),
		ShotcounterSettings:  []byte(`not json`),
	}
	require.NoError(t, env.db.Create(&legacy).Error)

	event, err := env.events.GetEvent(ctx, legacy.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.SettingsVersion, event.SettingsVersion)
	assert.True(t, event.SharedSettings.AutoReload())
	assert.Equal(t, "Preisliste", event.SharedSettings.PriceList.Title)
	assert.Equal(t, domain.NewFlexInt(domain.DefaultDepotPrice), event.KassensystemSettings.DepotPrice)
	assert.Equal(t, 7, event.KassensystemSettings.Items[0].Price.Value)
	assert.Equal(t, domain.DefaultLeaderboardLimit, event.ShotcounterSettings.LeaderboardLimit)
}

func TestEventService_LegacyItemFieldsKeepCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	legacy := dao.Event{
		Name:                "legacy form",
		KassensystemEnabled: true,
		KassensystemSettings: []byte(`{"items":[
			{"name":"Bier","price":5,"has_depot":"on"},
			{"name":"Wein","price":7,"has_depot":0},
			{"name":42,"price":1},
			{"name":"Kaffee","price":3,"has_depot":1}
		]}`),
	}
	require.NoError(t, env.db.Create(&legacy).Error)

	event, err := env.events.GetEvent(ctx, legacy.ID)
	require.NoError(t, err)

	items := env.carts.Catalog(event)
	require.Len(t, items, 3)
	assert.Equal(t, "Bier", items[0].Name)
	assert.Equal(t, 7, items[0].EffectivePrice())
	assert.Equal(t, 7, items[1].EffectivePrice())
	assert.Equal(t, 5, items[2].EffectivePrice())
}
