// Package server exposes the HTTP surface: health, metrics, a thin delivery
// endpoint, and the per-provider webhook receivers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/seconds-app/courier-bridge/internal/broker"
	"github.com/seconds-app/courier-bridge/internal/telemetry"
	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/seconds-app/courier-bridge/pkg/courier/ecofleet"
	"github.com/seconds-app/courier-bridge/pkg/courier/gophr"
	"github.com/seconds-app/courier-bridge/pkg/courier/streetstream"
	"github.com/seconds-app/courier-bridge/pkg/courier/stuart"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the courier bridge.
type Server struct {
	port         int
	registry     *courier.Registry
	orchestrator *broker.Orchestrator
	reconciler   *broker.Reconciler
	logger       *otelzap.Logger
	metrics      *telemetry.Metrics
	gophrAPIKey  string
}

// Config holds server configuration.
type Config struct {
	Port        int
	GophrAPIKey string
}

// New creates a new server instance.
func New(cfg Config, registry *courier.Registry, orchestrator *broker.Orchestrator, reconciler *broker.Reconciler, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:         cfg.Port,
		registry:     registry,
		orchestrator: orchestrator,
		reconciler:   reconciler,
		logger:       logger,
		metrics:      metrics,
		gophrAPIKey:  cfg.GophrAPIKey,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/deliveries", s.handleCreateDelivery)

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/stuart", s.handleStuartWebhook)
		r.Post("/gophr", s.handleGophrWebhook)
		r.Post("/streetstream", s.handleStreetStreamWebhook)
		r.Post("/ecofleet", s.handleEcofleetWebhook)
	})

	return r
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ============================================================================
// Delivery endpoint
// ============================================================================

type waypointRequest struct {
	Address      string `json:"address"`
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	Postcode     string `json:"postcode"`
	CountryCode  string `json:"countryCode,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Company      string `json:"company,omitempty"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type createDeliveryRequest struct {
	ClientID           string           `json:"clientId"`
	CustomerRef        string           `json:"customerRef,omitempty"`
	PaymentRef         string           `json:"paymentRef,omitempty"`
	Strategy           string           `json:"strategy"`
	DeliveryType       string           `json:"deliveryType"`
	VehicleCode        string           `json:"vehicleCode"`
	PackageDescription string           `json:"packageDescription,omitempty"`
	PackageWeightKg    float64          `json:"packageWeightKg,omitempty"`
	ItemsCount         int              `json:"itemsCount,omitempty"`
	Pickup             waypointRequest  `json:"pickup"`
	Dropoff            waypointRequest  `json:"dropoff"`
	PickupStart        *time.Time       `json:"pickupStart,omitempty"`
	PickupEnd          *time.Time       `json:"pickupEnd,omitempty"`
	DropoffStart       *time.Time       `json:"dropoffStart,omitempty"`
	DropoffEnd         *time.Time       `json:"dropoffEnd,omitempty"`
}

type createDeliveryResponse struct {
	Reference     string    `json:"reference"`
	OrderNumber   string    `json:"orderNumber"`
	Status        string    `json:"status"`
	Provider      string    `json:"provider"`
	ProviderJobID string    `json:"providerJobId"`
	DeliveryFee   float64   `json:"deliveryFee"`
	Currency      string    `json:"currency"`
	TrackingURL   string    `json:"trackingUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateDelivery(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	started := time.Now()
	job, err := s.orchestrator.CreateDelivery(r.Context(), &broker.CreateDeliveryInput{
		ClientID:    req.ClientID,
		CustomerRef: req.CustomerRef,
		PaymentRef:  req.PaymentRef,
		Request:     toDeliveryRequest(&req),
		Strategy:    courier.SelectionStrategy(req.Strategy),
	})
	if err != nil {
		s.logger.Error("Delivery creation failed", zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordRequest("create_delivery", "", "error", time.Since(started).Seconds())
			var provErr *courier.ProviderError
			if errors.As(err, &provErr) {
				s.metrics.RecordError(provErr.Provider, provErr.Code)
			}
		}
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}
	if s.metrics != nil {
		s.metrics.RecordRequest("create_delivery", job.Selected.ProviderID, "ok", time.Since(started).Seconds())
	}

	writeJSON(w, http.StatusCreated, createDeliveryResponse{
		Reference:     job.Reference,
		OrderNumber:   job.Specification.OrderNumber,
		Status:        string(job.Status),
		Provider:      job.Selected.ProviderID,
		ProviderJobID: job.Selected.ProviderJobID,
		DeliveryFee:   job.Selected.DeliveryFee.Float(),
		Currency:      job.Selected.DeliveryFee.Currency,
		TrackingURL:   job.Selected.TrackingURL,
		CreatedAt:     job.CreatedAt,
	})
}

func toDeliveryRequest(req *createDeliveryRequest) *courier.DeliveryRequest {
	return &courier.DeliveryRequest{
		Pickup:             toWaypoint(req.Pickup),
		Dropoff:            toWaypoint(req.Dropoff),
		PackageDescription: req.PackageDescription,
		PackageWeightKg:    req.PackageWeightKg,
		ItemsCount:         req.ItemsCount,
		PickupWindow:       courier.Window{Start: req.PickupStart, End: req.PickupEnd},
		DropoffWindow:      courier.Window{Start: req.DropoffStart, End: req.DropoffEnd},
		DeliveryType:       courier.DeliveryType(req.DeliveryType),
		VehicleCode:        courier.VehicleCode(req.VehicleCode),
	}
}

func toWaypoint(w waypointRequest) courier.Waypoint {
	return courier.Waypoint{
		Address: courier.Address{
			FullAddress: w.Address,
			Street:      w.Street,
			City:        w.City,
			Postcode:    w.Postcode,
			CountryCode: w.CountryCode,
		},
		Contact: courier.Contact{
			FirstName: w.FirstName,
			LastName:  w.LastName,
			Company:   w.Company,
			Phone:     w.Phone,
			Email:     w.Email,
		},
		Instructions: w.Instructions,
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, courier.ErrUnknownVehicleCode),
		errors.Is(err, courier.ErrDistanceExceeded),
		errors.Is(err, courier.ErrUnknownStrategy),
		courier.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, courier.ErrQuoteExpired),
		errors.Is(err, courier.ErrJobAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, courier.ErrNoQuotesAvailable),
		errors.Is(err, courier.ErrProviderNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Webhook endpoints. Always acknowledged with 200; failures are reported in
// the body only, so providers do not retry-storm the bridge.
// ============================================================================

type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleStuartWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.acknowledge(w, "stuart", fmt.Errorf("reading body: %w", err))
		return
	}

	hook, err := stuart.ParseWebhook(body)
	if err != nil {
		s.acknowledge(w, "stuart", err)
		return
	}
	s.acknowledge(w, "stuart", s.reconciler.Apply(r.Context(), hook.ToEvent()))
}

func (s *Server) handleGophrWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.acknowledge(w, "gophr", fmt.Errorf("reading body: %w", err))
		return
	}

	hook, err := gophr.ParseWebhook(body)
	if err != nil {
		s.acknowledge(w, "gophr", err)
		return
	}
	if !hook.Verify(s.gophrAPIKey) {
		s.acknowledge(w, "gophr", fmt.Errorf("webhook api key mismatch"))
		return
	}
	s.acknowledge(w, "gophr", s.reconciler.Apply(r.Context(), hook.ToEvent()))
}

func (s *Server) handleStreetStreamWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.acknowledge(w, "street_stream", fmt.Errorf("reading body: %w", err))
		return
	}

	hook, err := streetstream.ParseWebhook(body)
	if err != nil {
		s.acknowledge(w, "street_stream", err)
		return
	}
	s.acknowledge(w, "street_stream", s.reconciler.Apply(r.Context(), hook.ToEvent()))
}

func (s *Server) handleEcofleetWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.acknowledge(w, "ecofleet", fmt.Errorf("reading body: %w", err))
		return
	}

	hook, err := ecofleet.ParseWebhook(body)
	if err != nil {
		s.acknowledge(w, "ecofleet", err)
		return
	}
	s.acknowledge(w, "ecofleet", s.reconciler.Apply(r.Context(), hook.ToEvent()))
}

// acknowledge answers a webhook delivery. The status is always 200; a
// processing failure is logged and reported in the body.
func (s *Server) acknowledge(w http.ResponseWriter, provider string, err error) {
	if err != nil {
		s.logger.Warn("Webhook processing failed",
			zap.String("provider", provider),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, webhookResponse{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{Success: true, Message: "event applied"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
