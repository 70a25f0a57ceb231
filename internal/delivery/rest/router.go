package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(h *Handlers, logger *zap.Logger, metricsReg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(
		recoverer(logger),
		requestID(),
		requestLogging(logger),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metricsReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", h.RegisterUser)
		r.Get("/games/search", h.SearchGames)
		r.Get("/games/{id}", h.GameDetails)
		r.Post("/alerts", h.SetupAlert)
		r.Get("/alerts", h.ListAlerts)
		r.Delete("/alerts/{id}", h.RemoveAlert)
		r.Post("/digest/subscriptions", h.SubscribeDigest)
		r.Post("/digest/send", h.SendDigestNow)
		r.Get("/deals", h.CurrentDeals)
	})

	return r
}
