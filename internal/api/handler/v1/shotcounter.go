package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1/request"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1/response"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

type ScoringService interface {
	AddTeam(ctx context.Context, eventID uint, name string) (domain.Team, error)
	AddShots(ctx context.Context, eventID, teamID uint, amount int, meta domain.RequestMeta) (domain.Team, error)
	UpdateTeam(ctx context.Context, eventID, teamID uint, update domain.TeamUpdate) (domain.Team, error)
	DeleteTeam(ctx context.Context, eventID, teamID uint) error
	Leaderboard(ctx context.Context, event domain.Event, limit int) ([]domain.Team, error)
	Teams(ctx context.Context, eventID uint) ([]domain.Team, error)
}

type ShotcounterHandler struct {
	events  EventService
	scoring ScoringService
}

func NewShotcounterHandler(events EventService, scoring ScoringService) *ShotcounterHandler {
	return &ShotcounterHandler{
		events:  events,
		scoring: scoring,
	}
}

func (h *ShotcounterHandler) activeEvent(ctx *gin.Context) (domain.Event, bool) {
	event, err := h.events.RequireActiveEvent(ctx.Request.Context(), false, true)
	if err != nil {
		renderServiceErr(ctx, "h.events.RequireActiveEvent", err)
		return domain.Event{}, false
	}

	return event, true
}

// HandleGetTeams godoc
// @Summary      Teams of the active event
// @Tags         shotcounter
// @Produce      json
// @Success      200  {array}   domain.Team
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /shotcounter/teams [get]
func (h *ShotcounterHandler) HandleGetTeams(ctx *gin.Context) {
	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	teams, err := h.scoring.Teams(ctx.Request.Context(), event.ID)
	if err != nil {
		renderServiceErr(ctx, "HandleGetTeams -> h.scoring.Teams", err)
		return
	}

	ctx.JSON(http.StatusOK, teams)
}

// HandleCreateTeam godoc
// @Summary      Register a team
// @Tags         shotcounter
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateTeamRequest  true  "request body"
// @Success      201      {object}  domain.Team
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /shotcounter/teams [post]
func (h *ShotcounterHandler) HandleCreateTeam(ctx *gin.Context) {
	var req request.CreateTeamRequest
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

	team, err := h.scoring.AddTeam(ctx.Request.Context(), event.ID, req.Name)
	if err != nil {
		renderServiceErr(ctx, "HandleCreateTeam -> h.scoring.AddTeam", err)
		return
	}

	ctx.JSON(http.StatusCreated, team)
}

// HandleAddShots godoc
// @Summary      Add shots to a team
// @Tags         shotcounter
// @Accept       json
// @Produce      json
// @Param        teamID   path      int                      true  "Team ID"
// @Param        request  body      request.AddShotsRequest  true  "request body"
// @Success      200      {object}  domain.Team
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /shotcounter/teams/{teamID}/shots [post]
func (h *ShotcounterHandler) HandleAddShots(ctx *gin.Context) {
	teamID, respErr := parseID(ctx, "teamID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.AddShotsRequest
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

	team, err := h.scoring.AddShots(ctx.Request.Context(), event.ID, teamID, req.Amount, requestMeta(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleAddShots -> h.scoring.AddShots", err)
		return
	}

	ctx.JSON(http.StatusOK, team)
}

// HandleGetLeaderboard godoc
// @Summary      Leaderboard of the active event
// @Tags         shotcounter
// @Produce      json
// @Param        limit  query     int  false  "number of teams, defaults to the event setting"
// @Success      200    {object}  response.LeaderboardResponse
// @Failure      400    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /shotcounter/leaderboard [get]
func (h *ShotcounterHandler) HandleGetLeaderboard(ctx *gin.Context) {
	limit, respErr := parseLimit(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, ok := h.activeEvent(ctx)
	if !ok {
		return
	}

	teams, err := h.scoring.Leaderboard(ctx.Request.Context(), event, limit)
	if err != nil {
		renderServiceErr(ctx, "HandleGetLeaderboard -> h.scoring.Leaderboard", err)
		return
	}

	ctx.JSON(http.StatusOK, response.LeaderboardResponse{
		Event:    response.NewEventSummary(event),
		Settings: event.ShotcounterSettings,
		Teams:    teams,
	})
}
