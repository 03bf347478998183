// Package serverless adapts the application to hosts that invoke a plain
// http.Handler per request and may reuse the process between invocations.
package serverless

import (
	"net/http"
	"sync"

	"guestbook/internal/app"
	"guestbook/internal/config"
	"guestbook/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BuildFunc constructs the handler that serves every request.
type BuildFunc func() (http.Handler, error)

// Handler builds its inner handler on the first request and reuses it for
// the rest of the process lifetime. A failed build is not retried.
type Handler struct {
	build BuildFunc
	log   zerolog.Logger

	once  sync.Once
	inner http.Handler
	err   error
}

func New(build BuildFunc, log zerolog.Logger) *Handler {
	return &Handler{build: build, log: log}
}

// FromEnv returns a Handler that loads config from the environment and
// builds an app.App on first use.
func FromEnv() *Handler {
	log := logging.New("info", "json")
	return New(func() (http.Handler, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		gin.SetMode(gin.ReleaseMode)
		a, err := app.New(cfg, logging.New(cfg.Log.Level, cfg.Log.Format))
		if err != nil {
			return nil, err
		}
		return a.Router(), nil
	}, log)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.inner, h.err = h.build()
		if h.err != nil {
			h.log.Error().Err(h.err).Msg("application init failed")
			return
		}
		h.log.Info().Msg("application initialized")
	})
	if h.err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	h.inner.ServeHTTP(w, r)
}
