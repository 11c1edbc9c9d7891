package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1/response"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/audit"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/cart"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/config"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/db"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

const (
	testUserAgent = "go-test"
	testPassword  = "geheim"
	cookieName    = "kasse_session"
)

type testClient struct {
	t      *testing.T
	server *Server
	cookie *http.Cookie
	token  string
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	conf := &config.AppConfig{
		Gin: &config.GinConfig{Mode: gin.TestMode},
		API: &config.APIConfig{
			Port:               "0",
			AllowedCORSDomains: []string{"http://localhost"},
			JWTSigningKey:      "test-key",
			JWTTTL:             time.Hour,
			AdminPassword:      testPassword,
			SessionCookie:      cookieName,
		},
	}

	gdb, err := db.OpenSQLiteMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := NewServer(conf, gdb, cart.NewMemoryStore(), audit.Nop{})
	require.NoError(t, err)

	go s.Hub.Run()
	t.Cleanup(s.Hub.Stop)

	return &testClient{t: t, server: s}
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", testUserAgent)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.server.Router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == cookieName {
			c.cookie = cookie
		}
	}

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (c *testClient) login() {
	c.t.Helper()

	rec := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"password": testPassword})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	c.token = decode[response.LoginResponse](c.t, rec).Token
}

func (c *testClient) activeEvent(name string) domain.Event {
	c.t.Helper()

	rec := c.do(http.MethodPost, "/api/v1/admin/events", map[string]any{
		"name":                 name,
		"kassensystem_enabled": true,
		"shotcounter_enabled":  true,
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode[domain.Event](c.t, rec)

	rec = c.do(http.MethodPost, "/api/v1/admin/events/"+itoa(event.ID)+"/activate", nil)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())

	return decode[domain.Event](c.t, rec)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	}
}

func TestNoActiveEvent(t *testing.T) {
	c := newTestClient(t)

	for _, path := range []string{"/api/v1/cashier", "/api/v1/pricelist", "/api/v1/shotcounter/leaderboard", "/api/v1/stats"} {
		rec := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "falsch"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/admin/events", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c.login()
	rec = c.do(http.MethodGet, "/api/v1/admin/events", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCashierFlow(t *testing.T) {
	c := newTestClient(t)
	c.login()
	event := c.activeEvent("Demo")

	rec := c.do(http.MethodGet, "/api/v1/cashier", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c.cookie)
	screen := decode[response.CashierResponse](t, rec)
	assert.Equal(t, event.ID, screen.Event.ID)
	assert.True(t, screen.AutoReloadOnAdd)
	assert.NotEmpty(t, screen.Sections)

	for _, name := range []string{"Bier", "Süssgetränke"} {
		rec = c.do(http.MethodPost, "/api/v1/cashier/cart/items", map[string]string{"name": name})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[response.CartResponse](t, rec).Success)
	}

	rec = c.do(http.MethodPost, "/api/v1/cashier/cart/items", map[string]string{"name": "Glühwein"})
	require.Equal(t, http.StatusOK, rec.Code)
	ignored := decode[response.CartResponse](t, rec)
	assert.False(t, ignored.Success)
	assert.Equal(t, 13, ignored.Cart.Total)
	assert.Equal(t, 2, ignored.Cart.ItemCount)

	rec = c.do(http.MethodPost, "/api/v1/cashier/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	checkout := decode[response.CheckoutResponse](t, rec)
	assert.True(t, checkout.Success)
	require.NotNil(t, checkout.Order)
	assert.Equal(t, 13, checkout.Order.Total)
	assert.Len(t, checkout.Order.DrinkSales, 2)
	assert.Zero(t, checkout.Cart.ItemCount)

	// empty cart books nothing
	rec = c.do(http.MethodPost, "/api/v1/cashier/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[response.CheckoutResponse](t, rec).Success)

	rec = c.do(http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[domain.Stats](t, rec)
	assert.Equal(t, 13, stats.Revenue)
	assert.Equal(t, 1, stats.OrderCount)

	rec = c.do(http.MethodGet, "/api/v1/admin/events/"+itoa(event.ID)+"/logs/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]domain.OrderLog](t, rec)
	require.Len(t, logs, 1)
	assert.Equal(t, "admin", logs[0].Actor)
	assert.Equal(t, testUserAgent, logs[0].UserAgent)

	rec = c.do(http.MethodDelete, "/api/v1/admin/events/"+itoa(event.ID)+"/orders/"+itoa(checkout.Order.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodDelete, "/api/v1/admin/events/"+itoa(event.ID)+"/orders/"+itoa(checkout.Order.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCashier_TerminalActor(t *testing.T) {
	c := newTestClient(t)
	c.login()
	event := c.activeEvent("Demo")
	token := c.token
	c.token = ""

	rec := c.do(http.MethodPost, "/api/v1/cashier/cart/items", map[string]string{"name": "Kaffee"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodPost, "/api/v1/cashier/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	c.token = token
	rec = c.do(http.MethodGet, "/api/v1/admin/events/"+itoa(event.ID)+"/logs/orders", nil)
	logs := decode[[]domain.OrderLog](t, rec)
	require.Len(t, logs, 1)
	assert.Equal(t, "terminal-"+c.cookie.Value[:8], logs[0].Actor)
}

func TestCashier_SubsystemDisabled(t *testing.T) {
	c := newTestClient(t)
	c.login()
	event := c.activeEvent("Demo")

	rec := c.do(http.MethodPatch, "/api/v1/admin/events/"+itoa(event.ID), map[string]any{"kassensystem_enabled": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/v1/cashier", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = c.do(http.MethodGet, "/api/v1/shotcounter/teams", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShotcounterFlow(t *testing.T) {
	c := newTestClient(t)
	c.login()
	event := c.activeEvent("Demo")

	rec := c.do(http.MethodPost, "/api/v1/shotcounter/teams", map[string]string{"name": "Alpha"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	alpha := decode[domain.Team](t, rec)

	rec = c.do(http.MethodPost, "/api/v1/shotcounter/teams", map[string]string{"name": "Alpha"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/shotcounter/teams", map[string]string{"name": "<script>"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	shots := "/api/v1/shotcounter/teams/" + itoa(alpha.ID) + "/shots"
	rec = c.do(http.MethodPost, shots, map[string]int{"amount": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[domain.Team](t, rec).Shots)

	rec = c.do(http.MethodPost, shots, map[string]int{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/shotcounter/teams/999/shots", map[string]int{"amount": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodPatch, "/api/v1/admin/events/"+itoa(event.ID)+"/teams/"+itoa(alpha.ID), map[string]string{"name": "Beta"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/shotcounter/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[response.LeaderboardResponse](t, rec)
	require.Len(t, board.Teams, 1)
	assert.Equal(t, "Beta", board.Teams[0].Name)
	assert.Equal(t, domain.DefaultLeaderboardLimit, board.Settings.LeaderboardLimit)

	rec = c.do(http.MethodGet, "/api/v1/admin/events/"+itoa(event.ID)+"/logs/shots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]domain.ShotLog](t, rec)
	require.Len(t, logs, 1)
	assert.Equal(t, "Alpha", logs[0].TeamName)

	rec = c.do(http.MethodDelete, "/api/v1/admin/events/"+itoa(event.ID)+"/teams/"+itoa(alpha.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminEvents(t *testing.T) {
	c := newTestClient(t)
	c.login()

	rec := c.do(http.MethodPost, "/api/v1/admin/events", map[string]any{
		"name":                  "Fest",
		"kassensystem_settings": map[string]any{"items": []map[string]any{{"name": "Bier"}, {"name": "Bier"}}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bier")

	rec = c.do(http.MethodPost, "/api/v1/admin/events", map[string]any{
		"name":                  "Fest",
		"kassensystem_settings": map[string]any{"items": "nope"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/admin/events", map[string]any{"name": "Fest"})
	require.Equal(t, http.StatusCreated, rec.Code)
	event := decode[domain.Event](t, rec)
	path := "/api/v1/admin/events/" + itoa(event.ID)

	rec = c.do(http.MethodPatch, path, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPatch, path, map[string]any{"revision": event.Revision, "name": "Sommerfest"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Sommerfest", decode[domain.Event](t, rec).Name)

	// a second edit based on the old revision loses
	rec = c.do(http.MethodPatch, path, map[string]any{"revision": event.Revision, "name": "Winterfest"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, path+"/archive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.Event](t, rec).IsArchived)

	rec = c.do(http.MethodGet, "/api/v1/admin/events", nil)
	assert.Empty(t, decode[[]domain.Event](t, rec))
	rec = c.do(http.MethodGet, "/api/v1/admin/events?include_archived=true", nil)
	assert.Len(t, decode[[]domain.Event](t, rec), 1)
	rec = c.do(http.MethodGet, "/api/v1/admin/events?include_archived=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, path+"/unarchive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[domain.Event](t, rec).IsArchived)

	rec = c.do(http.MethodGet, "/api/v1/admin/events/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = c.do(http.MethodGet, "/api/v1/admin/events/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, path+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"revenue":0,"order_count":0,"shots_total":0,"top_products":[],"top_teams":[],"product_sales":[]}`,
		rec.Body.String())
}
