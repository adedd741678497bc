// Package httpapi exposes the donation, pickup and partner services over a
// chi REST API under /api.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"sewa/internal/app"
	"sewa/internal/auth"
	"sewa/internal/logger"
)

type Handler struct {
	svcs app.Services
	log  *zap.Logger
}

func NewHandler(svcs app.Services, log *zap.Logger) *Handler {
	log = logger.OrNop(log)
	return &Handler{svcs: svcs, log: log}
}

// NewRouter builds the full /api router with auth keyed by secret.
func NewRouter(svcs app.Services, secret string, log *zap.Logger) http.Handler {
	h := NewHandler(svcs, log)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.log))
	r.Route("/api", func(r chi.Router) {
		h.RegisterRoutes(r, secret)
	})
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router, secret string) {
	r.Get("/healthz", h.Health)
	r.Post("/auth/hotel/signup", h.SignupHotel)
	r.Post("/auth/ngo/signup", h.SignupNgo)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(secret))

		r.Get("/food/{id}", h.GetDonation)
		r.Get("/pickups", h.ListPickups)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireKindHTTP(auth.KindHotel))
			r.Post("/food", h.SubmitDonation)
			r.Get("/food/history", h.DonationHistory)
			r.Post("/food/otp/generate", h.GenerateOTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireKindHTTP(auth.KindNgo))
			r.Get("/food/available", h.ListAvailable)
			r.Post("/food/{id}/accept", h.AcceptDonation)
			r.Post("/food/{id}/reject", h.RejectDonation)
			r.Get("/food/ngo-history", h.NgoHistory)
			r.Post("/food/otp/verify", h.VerifyOTP)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireKindHTTP(auth.KindAdmin))
			r.Get("/pending", h.Pending)
			r.Get("/all", h.Overview)
			r.Patch("/verify/hotel/{id}", h.VerifyHotel)
			r.Patch("/verify/ngo/{id}", h.VerifyNgo)
			r.Post("/sweep", h.SweepExpired)
		})
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
