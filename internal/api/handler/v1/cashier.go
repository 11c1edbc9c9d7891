package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1/request"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1/response"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/middleware"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/catalog"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

type EventService interface {
	GetActiveEvent(ctx context.Context) (domain.Event, error)
	RequireActiveEvent(ctx context.Context, needPOS, needCounter bool) (domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	ListEvents(ctx context.Context, includeArchived bool) ([]domain.Event, error)
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	UpdateEvent(ctx context.Context, id uint, expectedRevision *int, update domain.EventUpdate) (domain.Event, error)
	ActivateEvent(ctx context.Context, id uint) (domain.Event, error)
	ArchiveEvent(ctx context.Context, id uint) (domain.Event, error)
	UnarchiveEvent(ctx context.Context, id uint) (domain.Event, error)
}

type CartService interface {
	Catalog(event domain.Event) []domain.CatalogItem
	Sections(event domain.Event, ctx catalog.Context) []domain.CatalogSection
	AddItem(ctx context.Context, event domain.Event, sessionID, name string) (bool, domain.Cart, error)
	RemoveLast(ctx context.Context, event domain.Event, sessionID string) (domain.Cart, error)
	ClearCart(ctx context.Context, event domain.Event, sessionID string) error
	GetCart(ctx context.Context, event domain.Event, sessionID string) (domain.Cart, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, event domain.Event, sessionID string, meta domain.RequestMeta) (*domain.Order, error)
	ListOrders(ctx context.Context, eventID uint, limit int) ([]domain.Order, error)
	DeleteOrder(ctx context.Context, eventID, orderID uint) error
}

type CashierHandler struct {
	events   EventService
	carts    CartService
	checkout CheckoutService
}

func NewCashierHandler(events EventService, carts CartService, checkout CheckoutService) *CashierHandler {
	return &CashierHandler{
		events:   events,
		carts:    carts,
		checkout: checkout,
	}
}

func (h *CashierHandler) activeEvent(ctx *gin.Context) (domain.Event, bool) {
	event, err := h.events.RequireActiveEvent(ctx.Request.Context(), true, false)
	if err != nil {
		renderServiceErr(ctx, "h.events.RequireActiveEvent", err)
		return domain.Event{}, false
	}

	return event, true
}

// HandleGetCashier godoc
// @Summary      Cashier screen
// @Description  Product buttons of the active event grouped by category, plus the terminal's cart.
// @Tags         cashier
// @Produce      json
// @Success      200  {object}  response.CashierResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /cashier [get]
func (h *CashierHandler) HandleGetCashier(ctx *gin.Context) {
	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(ctx.Request.Context(), event, middleware.SessionID(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleGetCashier -> h.carts.GetCart", err)
		return
	}

	ctx.JSON(http.StatusOK, response.CashierResponse{
		Event:           response.NewEventSummary(event),
		Sections:        h.carts.Sections(event, catalog.ContextCashier),
		Cart:            cart,
		AutoReloadOnAdd: event.SharedSettings.AutoReload(),
	})
}

// HandleGetCatalog godoc
// @Summary      Resolved catalog
// @Tags         cashier
// @Produce      json
// @Success      200  {array}   domain.CatalogItem
// @Failure      404  {object}  response.Err
// @Router       /cashier/catalog [get]
func (h *CashierHandler) HandleGetCatalog(ctx *gin.Context) {
	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, h.carts.Catalog(event))
}

// HandleGetCart godoc
// @Summary      Current cart of this terminal
// @Tags         cashier
// @Produce      json
// @Success      200  {object}  response.CartResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /cashier/cart [get]
func (h *CashierHandler) HandleGetCart(ctx *gin.Context) {
	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(ctx.Request.Context(), event, middleware.SessionID(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleGetCart -> h.carts.GetCart", err)
		return
	}

	ctx.JSON(http.StatusOK, response.CartResponse{Success: true, Cart: cart})
}

// HandleAddItem godoc
// @Summary      Tap a product
// @Description  Products not sold at the active event are ignored and answered with success=false.
// @Tags         cashier
// @Accept       json
// @Produce      json
// @Param        request  body      request.AddItemRequest  true  "request body"
// @Success      200      {object}  response.CartResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /cashier/cart/items [post]
func (h *CashierHandler) HandleAddItem(ctx *gin.Context) {
	var req request.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	added, cart, err := h.carts.AddItem(ctx.Request.Context(), event, middleware.SessionID(ctx), req.Name)
	if err != nil {
		renderServiceErr(ctx, "HandleAddItem -> h.carts.AddItem", err)
		return
	}

	ctx.JSON(http.StatusOK, response.CartResponse{Success: added, Cart: cart})
}

// HandleRemoveLast godoc
// @Summary      Undo the last tap
// @Tags         cashier
// @Produce      json
// @Success      200  {object}  response.CartResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /cashier/cart/items/last [delete]
func (h *CashierHandler) HandleRemoveLast(ctx *gin.Context) {
	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveLast(ctx.Request.Context(), event, middleware.SessionID(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleRemoveLast -> h.carts.RemoveLast", err)
		return
	}

	ctx.JSON(http.StatusOK, response.CartResponse{Success: true, Cart: cart})
}

// HandleClearCart godoc
// @Summary      Empty the cart
// @Tags         cashier
// @Produce      json
// @Success      200  {object}  response.CartResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /cashier/cart [delete]
func (h *CashierHandler) HandleClearCart(ctx *gin.Context) {
	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(ctx.Request.Context(), event, middleware.SessionID(ctx)); err != nil {
		renderServiceErr(ctx, "HandleClearCart -> h.carts.ClearCart", err)
		return
	}

	ctx.JSON(http.StatusOK, response.CartResponse{Success: true, Cart: domain.Cart{Items: []domain.CartLine{}}})
}

// HandleCheckout godoc
// @Summary      Book the cart
// @Description  An empty cart books nothing and answers success=false with a null order.
// @Tags         cashier
// @Produce      json
// @Success      200  {object}  response.CheckoutResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /cashier/checkout [post]
func (h *CashierHandler) HandleCheckout(ctx *gin.Context) {
	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	session := middleware.SessionID(ctx)
	order, err := h.checkout.Checkout(ctx.Request.Context(), event, session, requestMeta(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleCheckout -> h.checkout.Checkout", err)
		return
	}

	cart, err := h.carts.GetCart(ctx.Request.Context(), event, session)
	if err != nil {
		renderServiceErr(ctx, "HandleCheckout -> h.carts.GetCart", err)
		return
	}

	ctx.JSON(http.StatusOK, response.CheckoutResponse{
		Success: order != nil,
		Order:   order,
		Cart:    cart,
	})
}

// HandleGetPriceList godoc
// @Summary      Public price list
// @Tags         cashier
// @Produce      json
// @Success      200  {object}  response.PriceListResponse
// @Failure      404  {object}  response.Err
// @Router       /pricelist [get]
func (h *CashierHandler) HandleGetPriceList(ctx *gin.Context) {
	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, response.PriceListResponse{
		Event:    response.NewEventSummary(event),
		Title:    event.SharedSettings.PriceList.Title,
		Columns:  event.SharedSettings.PriceList.Columns,
		Sections: h.carts.Sections(event, catalog.ContextPriceList),
	})
}
