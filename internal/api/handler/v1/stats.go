package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

type StatsService interface {
	Stats(ctx context.Context, eventID uint) (domain.Stats, error)
}

type StatsHandler struct {
	events EventService
	svc    StatsService
}

func NewStatsHandler(events EventService, svc StatsService) *StatsHandler {
	return &StatsHandler{
		events: events,
		svc:    svc,
	}
}

// HandleGetStats godoc
// @Summary      Statistics of the active event
// @Tags         stats
// @Produce      json
// @Success      200  {object}  domain.Stats
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /stats [get]
func (h *StatsHandler) HandleGetStats(ctx *gin.Context) {
	event, err := h.events.GetActiveEvent(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "HandleGetStats -> h.events.GetActiveEvent", err)
		return
	}

	stats, err := h.svc.Stats(ctx.Request.Context(), event.ID)
	if err != nil {
		renderServiceErr(ctx, "HandleGetStats -> h.svc.Stats", err)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
