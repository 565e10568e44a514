package http

import (
	"log/slog"

	"github.com/geocoder89/userdash/internal/http/handlers"
	"github.com/geocoder89/userdash/internal/http/middlewares"
	"github.com/geocoder89/userdash/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is what both servers share.
type Deps struct {
	Env         string
	ServiceName string
	Log         *slog.Logger
	Prom        *observability.Prom
	Gatherer    prometheus.Gatherer
	// readiness checks, keyed by dependency name
	Checks map[string]handlers.Pinger
}

func newEngine(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(d.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())

	// health
	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

// NewDashboardRouter serves the dashboard page and its JSON API.
func NewDashboardRouter(d Deps, ctrl handlers.DashboardController) *gin.Engine {
	r := newEngine(d)
	r.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBodyBytes))
	r.SetHTMLTemplate(handlers.DashboardTemplate())

	dh := handlers.NewDashboardHandler(ctrl)

	// HTML form posts, each answered with a redirect back to the page
	r.GET("/", dh.Page)
	r.POST("/submit", dh.SubmitForm)
	r.POST("/records/:id/edit", dh.EditForm)
	r.POST("/records/:id/delete", dh.DeleteForm)
	r.POST("/page/next", dh.NextPageForm)
	r.POST("/page/prev", dh.PrevPageForm)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())
	{
		api.GET("/state", dh.GetState)
		api.PUT("/draft", dh.ReplaceDraft)
		api.PATCH("/draft/:field", dh.SetField)
		api.POST("/submit", dh.Submit)
		api.POST("/records/:id/edit", dh.BeginEdit)
		api.DELETE("/records/:id", dh.Delete)
		api.POST("/page/next", dh.NextPage)
		api.POST("/page/prev", dh.PrevPage)
	}

	return r
}

// NewMockstoreRouter serves the /users collection the dashboard talks to in development.
func NewMockstoreRouter(d Deps, uh *handlers.UsersHandler, allowedOrigins []string) *gin.Engine {
	r := newEngine(d)
	r.Use(middlewares.CORSMiddleware(allowedOrigins))
	r.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBodyBytes))

	users := r.Group("/users")
	users.Use(middlewares.RequireJSON())
	{
		users.GET("", uh.ListUsers)
		users.POST("", uh.CreateUser)
		users.GET("/:id", uh.GetUserByID)
		users.PUT("/:id", uh.UpdateUser)
		users.DELETE("/:id", uh.DeleteUser)
	}

	return r
}
