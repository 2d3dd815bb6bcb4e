package router

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"ozo-backend/internal/adapter/gin/handler"
	"ozo-backend/internal/adapter/gin/middleware"
)

//go:embed openapi.json
var openAPISpec []byte

// OpenAPIPath is where the embedded OpenAPI document is served.
const OpenAPIPath = "/docs/openapi.json"

// Handlers groups the HTTP handlers mounted by SetupRouter.
type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Item   *handler.ItemHandler
	Health *handler.HealthHandler
}

// Options carries router settings taken from configuration.
type Options struct {
	AllowOrigins []string
	Release      bool
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(h Handlers, verifier middleware.TokenVerifier, opts Options, log *zap.Logger) *gin.Engine {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(opts.AllowOrigins))

	router.GET("/", h.Health.Root)
	router.GET("/health", h.Health.Health)

	router.GET(OpenAPIPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPISpec)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(OpenAPIPath))))

	requireAuth := middleware.BearerAuth(verifier, log)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", h.Auth.Signup)
			authGroup.POST("/login", h.Auth.Login)
		}

		users := v1.Group("/users")
		{
			users.POST("", h.Auth.Signup)
			users.GET("/me", requireAuth, h.User.GetMe)
			users.GET("/:id", h.User.GetUser)
			users.PATCH("/:id", requireAuth, h.User.UpdateUser)
			users.DELETE("/:id", requireAuth, h.User.DeleteUser)
		}

		v1.GET("/items", h.Item.ListItems)
	}

	return router
}
