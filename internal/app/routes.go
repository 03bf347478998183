package app

import (
	"context"
	"net/http"
	"time"

	"guestbook/docs"
	"guestbook/internal/cache"
	"guestbook/internal/handlers"
	"guestbook/internal/middleware"
	"guestbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// route is one entry of the explicit route table.
type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, a *App) {
	metrics := middleware.NewMetrics(a.registry)
	r.Use(middleware.RequestLogger(a.log), metrics.Handler())

	register(r, "", systemRoutes(a), a.log)

	var listCache service.ListCache
	if a.redis != nil {
		listCache = cache.NewEntryCache(a.redis, a.cfg.Redis.DefaultTTL.Duration())
	}
	entrySvc := service.NewEntryService(a.entries, listCache, a.log.With().Str("component", "service").Logger())
	guestbook := handlers.NewGuestbookHandler(entrySvc, a.log.With().Str("component", "handlers").Logger())

	prefix := a.cfg.HTTP.RoutePrefix
	docs.SwaggerInfo.BasePath = prefix
	if prefix == "" {
		docs.SwaggerInfo.BasePath = "/"
	}
	register(r.Group(prefix), prefix, guestbookRoutes(guestbook), a.log)
}

func guestbookRoutes(h *handlers.GuestbookHandler) []route {
	return []route{
		{http.MethodGet, "/guestbook", h.List},
		{http.MethodPost, "/guestbook", h.Create},
		{http.MethodPut, "/guestbook/:id", h.Update},
		{http.MethodDelete, "/guestbook/:id", h.Delete},
	}
}

func systemRoutes(a *App) []route {
	return []route{
		{http.MethodGet, "/", rootHandler(a)},
		{http.MethodGet, "/health", healthHandler(a)},
		{http.MethodGet, "/version", versionHandler(a)},
		{http.MethodGet, "/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))},
		{http.MethodGet, "/swagger-doc.json", swaggerDocHandler()},
		{http.MethodGet, "/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") }},
		{http.MethodGet, "/swagger/*any", ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.URL("/swagger-doc.json"),
			ginSwagger.DefaultModelsExpandDepth(-1),
		)},
	}
}

func register(g gin.IRoutes, base string, routes []route, log zerolog.Logger) {
	for _, rt := range routes {
		g.Handle(rt.method, rt.path, rt.handler)
		log.Debug().Str("method", rt.method).Str("path", base+rt.path).Msg("route registered")
	}
}

func rootHandler(a *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Guestbook API",
			"version": a.cfg.App.Version,
			"env":     a.cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"metrics": "/metrics",
			"api":     a.cfg.HTTP.RoutePrefix + "/guestbook",
		})
	}
}

func healthHandler(a *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := a.entries.Ping(ctx); err != nil {
			a.log.Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "env": a.cfg.App.Env, "store": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": a.cfg.App.Env, "store": a.cfg.Store.Driver})
	}
}

func versionHandler(a *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": a.cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}
