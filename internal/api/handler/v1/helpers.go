package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1/response"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/middleware"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/service"
)

const terminalPrefixLength = 8

// HandleHealthcheck godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.HealthResponse
// @Router       /health [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}

// requestMeta names who triggered a mutation: the admin from the JWT, else
// the cashier terminal by its session.
func requestMeta(ctx *gin.Context) domain.RequestMeta {
	actor := ctx.GetString(middleware.ActorKey)
	if actor == "" {
		session := middleware.SessionID(ctx)
		if len(session) > terminalPrefixLength {
			session = session[:terminalPrefixLength]
		}
		actor = "terminal-" + session
	}

	return domain.RequestMeta{
		Actor:     actor,
		UserAgent: ctx.Request.UserAgent(),
	}
}

func parseID(ctx *gin.Context, param string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %v %q", param, ctx.Param(param)))
	}

	return uint(id), nil
}

func parseLimit(ctx *gin.Context) (int, *response.Err) {
	raw := ctx.Query("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid limit %q", raw))
	}

	return limit, nil
}

// renderServiceErr maps the service error classes onto HTTP answers.
func renderServiceErr(ctx *gin.Context, op string, err error) {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		response.RenderErr(ctx, response.ErrBadRequest(verr))
	case errors.Is(err, service.ErrUnknownCartItems):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrNoActiveEvent),
		errors.Is(err, service.ErrSubsystemDisabled),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		response.RenderErr(ctx, response.ErrNoResource(err))
	case errors.Is(err, service.ErrEventConflict),
		errors.Is(err, service.ErrTeamNameExists),
		errors.Is(err, service.ErrCartBusy):
		response.RenderErr(ctx, response.ErrConflict(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%v -> %w", op, err)))
	}
}
