package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker-api/internal/client"
	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/dto"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/handler"
	"project-tracker-api/internal/metrics"
	"project-tracker-api/internal/middleware"
	"project-tracker-api/internal/service"
)

// Config holds the dependencies needed to build the HTTP engine
type Config struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Logger      *zap.Logger
	JWTSecret   string
	BasePath    string
	CORSOrigins []string
	Metrics     *metrics.Metrics
	// Publisher receives every mutation event. Defaults to Hub, then to a no-op.
	Publisher events.Publisher
	Hub       *events.Hub
	// S3Client enables the attachment routes when set. Leave the interface
	// nil rather than wrapping a nil pointer.
	S3Client client.S3ClientInterface
	// Services is built from the fields above when nil
	Services *service.Services
}

// Setup builds the gin engine with every route mounted
func Setup(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	pub := cfg.Publisher
	if pub == nil {
		if cfg.Hub != nil {
			pub = cfg.Hub
		} else {
			pub = events.NopPublisher{}
		}
	}

	services := cfg.Services
	if services == nil {
		services = service.NewServices(cfg.DB, pub, cfg.S3Client, cfg.Metrics, logger)
	}

	db := cfg.DB
	healthHandler := handler.NewHealthHandler(func() *gorm.DB { return db }, cfg.Redis)

	// Health and metrics (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	basePath := strings.TrimRight(cfg.BasePath, "/")
	api := r.Group(basePath)
	{
		// Health and metrics again under a non-root base path
		if basePath != "" {
			api.GET("/health", healthHandler.Health)
			api.GET("/ready", healthHandler.Ready)
			api.GET("/metrics", gin.WrapH(promhttp.Handler()))
		}

		// The websocket authenticates through the token query parameter
		if cfg.Hub != nil {
			wsHandler := handler.NewWebSocketHandler(cfg.Hub, cfg.JWTSecret, cfg.CORSOrigins, logger)
			api.GET("/ws", wsHandler.Serve)
		}

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(cfg.JWTSecret))
		registerResources(authenticated, services, logger)

		if services.Attachments != nil {
			handler.NewAttachmentHandler(services.Attachments, logger).Register(authenticated)
		} else {
			logger.Warn("Attachment routes disabled, no object storage configured")
		}
	}

	return r
}

func registerResources(rg *gin.RouterGroup, s *service.Services, logger *zap.Logger) {
	// Organization
	handler.NewResourceHandler(s.Companies,
		func() dto.CreateRequest[domain.Company] { return &dto.CreateCompanyRequest{} },
		func() dto.UpdateRequest[domain.Company] { return &dto.UpdateCompanyRequest{} },
		logger).Register(rg)
	handler.NewResourceHandler(s.Departments,
		func() dto.CreateRequest[domain.Department] { return &dto.CreateDepartmentRequest{} },
		func() dto.UpdateRequest[domain.Department] { return &dto.UpdateDepartmentRequest{} },
		logger).Register(rg)
	handler.NewResourceHandler(s.Teams,
		func() dto.CreateRequest[domain.Team] { return &dto.CreateTeamRequest{} },
		func() dto.UpdateRequest[domain.Team] { return &dto.UpdateTeamRequest{} },
		logger).Register(rg)
	handler.NewResourceHandler(s.Users,
		func() dto.CreateRequest[domain.User] { return &dto.CreateUserRequest{} },
		func() dto.UpdateRequest[domain.User] { return &dto.UpdateUserRequest{} },
		logger).Register(rg)
	handler.NewResourceHandler(s.Locations,
		func() dto.CreateRequest[domain.Location] { return &dto.CreateLocationRequest{} },
		func() dto.UpdateRequest[domain.Location] { return &dto.UpdateLocationRequest{} },
		logger).Register(rg)
	handler.NewResourceHandler(s.Devices,
		func() dto.CreateRequest[domain.Device] { return &dto.CreateDeviceRequest{} },
		func() dto.UpdateRequest[domain.Device] { return &dto.UpdateDeviceRequest{} },
		logger).Register(rg)

	// Work
	handler.NewResourceHandler(s.Projects,
		func() dto.CreateRequest[domain.Project] { return &dto.CreateProjectRequest{} },
		func() dto.UpdateRequest[domain.Project] { return &dto.UpdateProjectRequest{} },
		logger).Register(rg)
	handler.NewResourceHandler(s.Epics,
		func() dto.CreateRequest[domain.Epic] { return &dto.CreateEpicRequest{} },
		func() dto.UpdateRequest[domain.Epic] { return &dto.UpdateEpicRequest{} },
		logger).Register(rg)
	handler.NewResourceHandler(s.Stories,
		func() dto.CreateRequest[domain.Story] { return &dto.CreateStoryRequest{} },
		func() dto.UpdateRequest[domain.Story] { return &dto.UpdateStoryRequest{} },
		logger).Register(rg)
	handler.NewTaskHandler(s.Tasks, logger).Register(rg)
	handler.NewResourceHandler(s.Sprints,
		func() dto.CreateRequest[domain.Sprint] { return &dto.CreateSprintRequest{} },
		func() dto.UpdateRequest[domain.Sprint] { return &dto.UpdateSprintRequest{} },
		logger).Register(rg)
	handler.NewResourceHandler(s.BacklogItems,
		func() dto.CreateRequest[domain.BacklogItem] { return &dto.CreateBacklogItemRequest{} },
		func() dto.UpdateRequest[domain.BacklogItem] { return &dto.UpdateBacklogItemRequest{} },
		logger).Register(rg)

	// Collaboration
	handler.NewResourceHandler(s.Comments,
		func() dto.CreateRequest[domain.Comment] { return &dto.CreateCommentRequest{} },
		func() dto.UpdateRequest[domain.Comment] { return &dto.UpdateCommentRequest{} },
		logger).Register(rg)
	handler.NewNotificationHandler(s.Notifications, logger).Register(rg)
}
