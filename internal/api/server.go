package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/docs"
	v1 "github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/middleware"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/cart"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/config"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Hub    *v1.LeaderboardHub
}

type handlers struct {
	auth        *v1.AuthHandler
	cashier     *v1.CashierHandler
	shotcounter *v1.ShotcounterHandler
	stats       *v1.StatsHandler
	admin       *v1.AdminHandler
}

// NewServer wires repositories, services and handlers. The caller runs
// s.Hub before serving requests.
func NewServer(conf *config.AppConfig, db *gorm.DB, store cart.Store, publisher service.AuditPublisher) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	eventSvc := service.NewEventService(repository.NewEventRepository(dao.NewEventDAO(db)))
	hub := v1.NewLeaderboardHub(eventSvc)

	s := &Server{
		Config: conf,
		Router: engine,
		Hub:    hub,
	}

	s.MountMiddlewares()

	authHandler, err := s.initAuthHandler()
	if err != nil {
		return nil, err
	}

	teamRepo := repository.NewTeamRepository(dao.NewTeamDAO(db))
	cartSvc := service.NewCartService(store)
	checkoutSvc := service.NewCheckoutService(repository.NewOrderRepository(dao.NewOrderDAO(db)), store, publisher)
	scoringSvc := service.NewScoringService(teamRepo, hub, publisher)
	statsSvc := service.NewStatsService(repository.NewStatsRepository(dao.NewStatsDAO(db)), teamRepo)
	auditSvc := service.NewAuditService(repository.NewAuditRepository(dao.NewAuditDAO(db)))

	s.MountHandlers(handlers{
		auth:        authHandler,
		cashier:     v1.NewCashierHandler(eventSvc, cartSvc, checkoutSvc),
		shotcounter: v1.NewShotcounterHandler(eventSvc, scoringSvc),
		stats:       v1.NewStatsHandler(eventSvc, statsSvc),
		admin:       v1.NewAdminHandler(eventSvc, scoringSvc, checkoutSvc, auditSvc, statsSvc),
	})

	return s, nil
}

func (s *Server) initAuthHandler() (*v1.AuthHandler, error) {
	svc, err := service.NewAuthService(s.Config.API.AdminPasswordHash, s.Config.API.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("service.NewAuthService -> %w", err)
	}
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler, nil
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	if rl := s.Config.RateLimit; rl != nil {
		s.Router.Use(middleware.RateLimit(rl.RPS, rl.Burst))
	}
	s.Router.Use(middleware.Session(s.Config.API.SessionCookie))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	api := s.Router.Group(basePath, authenticator.IdentifyJWT())
	{
		api.GET("/health", v1.HandleHealthcheck)
		api.POST("/auth/login", h.auth.HandleLogin)

		api.GET("/cashier", h.cashier.HandleGetCashier)
		api.GET("/cashier/catalog", h.cashier.HandleGetCatalog)
		api.GET("/cashier/cart", h.cashier.HandleGetCart)
		api.POST("/cashier/cart/items", h.cashier.HandleAddItem)
		api.DELETE("/cashier/cart/items/last", h.cashier.HandleRemoveLast)
		api.DELETE("/cashier/cart", h.cashier.HandleClearCart)
		api.POST("/cashier/checkout", h.cashier.HandleCheckout)
		api.GET("/pricelist", h.cashier.HandleGetPriceList)

		api.GET("/shotcounter/teams", h.shotcounter.HandleGetTeams)
		api.POST("/shotcounter/teams", h.shotcounter.HandleCreateTeam)
		api.POST("/shotcounter/teams/:teamID/shots", h.shotcounter.HandleAddShots)
		api.GET("/shotcounter/leaderboard", h.shotcounter.HandleGetLeaderboard)
		api.GET("/shotcounter/ws", s.Hub.HandleWebSocket)

		api.GET("/stats", h.stats.HandleGetStats)
	}

	admin := s.Router.Group(basePath+"/admin", authenticator.VerifyJWT())
	{
		admin.GET("/events", h.admin.HandleListEvents)
		admin.POST("/events", h.admin.HandleCreateEvent)
		admin.GET("/events/:eventID", h.admin.HandleGetEvent)
		admin.PATCH("/events/:eventID", h.admin.HandleUpdateEvent)
		admin.POST("/events/:eventID/activate", h.admin.HandleActivateEvent)
		admin.POST("/events/:eventID/archive", h.admin.HandleArchiveEvent)
		admin.POST("/events/:eventID/unarchive", h.admin.HandleUnarchiveEvent)

		admin.GET("/events/:eventID/teams", h.admin.HandleGetTeams)
		admin.PATCH("/events/:eventID/teams/:teamID", h.admin.HandleUpdateTeam)
		admin.DELETE("/events/:eventID/teams/:teamID", h.admin.HandleDeleteTeam)

		admin.GET("/events/:eventID/orders", h.admin.HandleListOrders)
		admin.DELETE("/events/:eventID/orders/:orderID", h.admin.HandleDeleteOrder)

		admin.GET("/events/:eventID/logs/orders", h.admin.HandleListOrderLogs)
		admin.GET("/events/:eventID/logs/shots", h.admin.HandleListShotLogs)
		admin.GET("/events/:eventID/stats", h.admin.HandleGetEventStats)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/health", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Kassensystem & Shotcounter API"
	docs.SwaggerInfo.Description = "Point of sale and team shot counter for small events."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
