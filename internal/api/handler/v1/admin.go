package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1/request"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1/response"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

type AuditService interface {
	ListOrderLogs(ctx context.Context, eventID uint, limit int) ([]domain.OrderLog, error)
	ListShotLogs(ctx context.Context, eventID uint, limit int) ([]domain.ShotLog, error)
}

// AdminHandler serves the event management endpoints. Every route sits
// behind the JWT gate.
type AdminHandler struct {
	events   EventService
	scoring  ScoringService
	checkout CheckoutService
	audit    AuditService
	stats    StatsService
}

func NewAdminHandler(events EventService, scoring ScoringService, checkout CheckoutService, audit AuditService, stats StatsService) *AdminHandler {
	return &AdminHandler{
		events:   events,
		scoring:  scoring,
		checkout: checkout,
		audit:    audit,
		stats:    stats,
	}
}

// HandleListEvents godoc
// @Summary      List events
// @Tags         admin
// @Produce      json
// @Param        include_archived  query     bool  false  "also list archived events"
// @Success      200               {array}   domain.Event
// @Failure      400               {object}  response.Err
// @Failure      401               {object}  response.Err
// @Failure      500               {object}  response.Err
// @Router       /admin/events [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListEvents(ctx *gin.Context) {
	includeArchived := false
	if raw := ctx.Query("include_archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid include_archived %q", raw)))
			return
		}
		includeArchived = v
	}

	events, err := h.events.ListEvents(ctx.Request.Context(), includeArchived)
	if err != nil {
		renderServiceErr(ctx, "HandleListEvents -> h.events.ListEvents", err)
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  The event starts inactive. An empty catalog becomes the built-in one.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "request body"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/events [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := req.Event()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.events.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		renderServiceErr(ctx, "HandleCreateEvent -> h.events.CreateEvent", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /admin/events/{eventID} [get]
// @Security BearerAuth
func (h *AdminHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.events.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "HandleGetEvent -> h.events.GetEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleUpdateEvent godoc
// @Summary      Edit an event
// @Description  Partial update. Send the revision you loaded to detect concurrent edits.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        request  body      request.UpdateEventRequest  true  "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/events/{eventID} [patch]
// @Security BearerAuth
func (h *AdminHandler) HandleUpdateEvent(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	update, err := req.Update()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.events.UpdateEvent(ctx.Request.Context(), eventID, req.Revision, update)
	if err != nil {
		renderServiceErr(ctx, "HandleUpdateEvent -> h.events.UpdateEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleActivateEvent godoc
// @Summary      Make an event the active one
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Event
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/events/{eventID}/activate [post]
// @Security BearerAuth
func (h *AdminHandler) HandleActivateEvent(ctx *gin.Context) {
	h.handleEventTransition(ctx, "h.events.ActivateEvent", h.events.ActivateEvent)
}

// HandleArchiveEvent godoc
// @Summary      Archive an event
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Event
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /admin/events/{eventID}/archive [post]
// @Security BearerAuth
func (h *AdminHandler) HandleArchiveEvent(ctx *gin.Context) {
	h.handleEventTransition(ctx, "h.events.ArchiveEvent", h.events.ArchiveEvent)
}

// HandleUnarchiveEvent godoc
// @Summary      Restore an archived event
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Event
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /admin/events/{eventID}/unarchive [post]
// @Security BearerAuth
func (h *AdminHandler) HandleUnarchiveEvent(ctx *gin.Context) {
	h.handleEventTransition(ctx, "h.events.UnarchiveEvent", h.events.UnarchiveEvent)
}

func (h *AdminHandler) handleEventTransition(ctx *gin.Context, op string, fn func(context.Context, uint) (domain.Event, error)) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := fn(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, op, err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleGetTeams godoc
// @Summary      Teams of an event
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.Team
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/events/{eventID}/teams [get]
// @Security BearerAuth
func (h *AdminHandler) HandleGetTeams(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	teams, err := h.scoring.Teams(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "HandleGetTeams -> h.scoring.Teams", err)
		return
	}

	ctx.JSON(http.StatusOK, teams)
}

// HandleUpdateTeam godoc
// @Summary      Rename a team or correct its shots
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                        true  "Event ID"
// @Param        teamID   path      int                        true  "Team ID"
// @Param        request  body      request.UpdateTeamRequest  true  "request body"
// @Success      200      {object}  domain.Team
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/events/{eventID}/teams/{teamID} [patch]
// @Security BearerAuth
func (h *AdminHandler) HandleUpdateTeam(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	teamID, respErr := parseID(ctx, "teamID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateTeamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := h.scoring.UpdateTeam(ctx.Request.Context(), eventID, teamID, domain.TeamUpdate{
		Name:  req.Name,
		Shots: req.Shots,
	})
	if err != nil {
		renderServiceErr(ctx, "HandleUpdateTeam -> h.scoring.UpdateTeam", err)
		return
	}

	ctx.JSON(http.StatusOK, team)
}

// HandleDeleteTeam godoc
// @Summary      Delete a team
// @Description  The team's shot logs are kept without the team reference.
// @Tags         admin
// @Param        eventID  path  int  true  "Event ID"
// @Param        teamID   path  int  true  "Team ID"
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /admin/events/{eventID}/teams/{teamID} [delete]
// @Security BearerAuth
func (h *AdminHandler) HandleDeleteTeam(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	teamID, respErr := parseID(ctx, "teamID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.scoring.DeleteTeam(ctx.Request.Context(), eventID, teamID); err != nil {
		renderServiceErr(ctx, "HandleDeleteTeam -> h.scoring.DeleteTeam", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListOrders godoc
// @Summary      Orders of an event, newest first
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true   "Event ID"
// @Param        limit    query     int  false  "maximum number of orders"
// @Success      200      {array}   domain.Order
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Router       /admin/events/{eventID}/orders [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListOrders(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	limit, respErr := parseLimit(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	orders, err := h.checkout.ListOrders(ctx.Request.Context(), eventID, limit)
	if err != nil {
		renderServiceErr(ctx, "HandleListOrders -> h.checkout.ListOrders", err)
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleDeleteOrder godoc
// @Summary      Delete a mistaken order
// @Description  Removes the order with its items and sales. The order log entry stays.
// @Tags         admin
// @Param        eventID  path  int  true  "Event ID"
// @Param        orderID  path  int  true  "Order ID"
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /admin/events/{eventID}/orders/{orderID} [delete]
// @Security BearerAuth
func (h *AdminHandler) HandleDeleteOrder(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	orderID, respErr := parseID(ctx, "orderID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.checkout.DeleteOrder(ctx.Request.Context(), eventID, orderID); err != nil {
		renderServiceErr(ctx, "HandleDeleteOrder -> h.checkout.DeleteOrder", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListOrderLogs godoc
// @Summary      Order audit log
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true   "Event ID"
// @Param        limit    query     int  false  "maximum entries, default 100"
// @Success      200      {array}   domain.OrderLog
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Router       /admin/events/{eventID}/logs/orders [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListOrderLogs(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	limit, respErr := parseLimit(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	logs, err := h.audit.ListOrderLogs(ctx.Request.Context(), eventID, limit)
	if err != nil {
		renderServiceErr(ctx, "HandleListOrderLogs -> h.audit.ListOrderLogs", err)
		return
	}

	ctx.JSON(http.StatusOK, logs)
}

// HandleListShotLogs godoc
// @Summary      Shot audit log
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true   "Event ID"
// @Param        limit    query     int  false  "maximum entries, default 100"
// @Success      200      {array}   domain.ShotLog
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Router       /admin/events/{eventID}/logs/shots [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListShotLogs(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	limit, respErr := parseLimit(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	logs, err := h.audit.ListShotLogs(ctx.Request.Context(), eventID, limit)
	if err != nil {
		renderServiceErr(ctx, "HandleListShotLogs -> h.audit.ListShotLogs", err)
		return
	}

	ctx.JSON(http.StatusOK, logs)
}

// HandleGetEventStats godoc
// @Summary      Statistics of any event
// @Tags         admin
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Stats
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /admin/events/{eventID}/stats [get]
// @Security BearerAuth
func (h *AdminHandler) HandleGetEventStats(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if _, err := h.events.GetEvent(ctx.Request.Context(), eventID); err != nil {
		renderServiceErr(ctx, "HandleGetEventStats -> h.events.GetEvent", err)
		return
	}

	stats, err := h.stats.Stats(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "HandleGetEventStats -> h.stats.Stats", err)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
