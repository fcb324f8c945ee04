package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"boothbook/internal/apperrors"
	"boothbook/internal/ports"
)

// Server exposes the services as a JSON API under /api.
type Server struct {
	companies ports.Companies
	contacts  ports.Contacts
	meetings  ports.Meetings
	reminders ports.Reminders
	dashboard ports.Dashboard
	health    ports.Pinger
	logger    *zap.Logger
}

type Services struct {
	Companies ports.Companies
	Contacts  ports.Contacts
	Meetings  ports.Meetings
	Reminders ports.Reminders
	Dashboard ports.Dashboard
	Health    ports.Pinger
}

func New(svc Services, logger *zap.Logger) *Server {
	return &Server{
		companies: svc.Companies,
		contacts:  svc.Contacts,
		meetings:  svc.Meetings,
		reminders: svc.Reminders,
		dashboard: svc.Dashboard,
		health:    svc.Health,
		logger:    logger.Named("http"),
	}
}

// Routes returns the router with request id, panic recovery and request logging.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.getHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", s.listCompanies)
			r.Post("/", s.createCompany)
			r.Get("/{id}", s.getCompany)
			r.Put("/{id}", s.updateCompany)
			r.Delete("/{id}", s.deleteCompany)
		})
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.listContacts)
			r.Post("/", s.createContact)
			r.Get("/{id}", s.getContact)
			r.Put("/{id}", s.updateContact)
			r.Delete("/{id}", s.deleteContact)
		})
		r.Route("/meetings", func(r chi.Router) {
			r.Get("/", s.listMeetings)
			r.Post("/", s.scheduleMeeting)
			r.Get("/{id}", s.getMeeting)
			r.Put("/{id}", s.updateMeeting)
			r.Delete("/{id}", s.deleteMeeting)
			r.Get("/{id}/reminders", s.listReminders)
			r.Post("/{id}/reminders", s.createReminder)
		})
		r.Get("/dashboard", s.getDashboard)
	})
	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.health.Ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation("invalid request body: %v", err)
	}
	return nil
}

// fail maps err to a status code. Validation and reference errors are the
// caller's fault and are echoed; everything else is logged and answered with
// the operation message only.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	msg := op
	switch apperrors.Kind(err) {
	case apperrors.ErrValidation:
		status, msg = http.StatusBadRequest, err.Error()
	case apperrors.ErrNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case apperrors.ErrReferentialIntegrity:
		status, msg = http.StatusUnprocessableEntity, err.Error()
	}
	if status == http.StatusInternalServerError || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Error(op,
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
