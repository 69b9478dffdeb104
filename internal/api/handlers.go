package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"booking-wizard/internal/models"
	"booking-wizard/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Service service.WizardService
	Logger  *zap.Logger

	checks []healthCheck
}

// HealthChecker is a dependency reported by the health endpoint
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type healthCheck struct {
	name    string
	checker HealthChecker
}

func NewHandler(svc service.WizardService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Service: svc,
		Logger:  logger,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// handleError writes a service failure with the status its kind maps to
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	svcErr, ok := service.AsError(err)
	if !ok {
		h.Logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := svcErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	respondError(w, status, svcErr.Message)
}

func decode(r *http.Request, v interface{}) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

// WithHealthCheck adds a dependency to the health report under name.
func (h *Handler) WithHealthCheck(name string, checker HealthChecker) *Handler {
	h.checks = append(h.checks, healthCheck{name: name, checker: checker})
	return h
}

// Health check endpoint. Any failing dependency makes the service unhealthy.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "healthy"}
	status := http.StatusOK
	for _, check := range h.checks {
		if err := check.checker.HealthCheck(r.Context()); err != nil {
			h.Logger.Warn("Health check failed", zap.String("dependency", check.name), zap.Error(err))
			body[check.name] = err.Error()
			body["status"] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		body[check.name] = "ok"
	}
	respondJSON(w, status, body)
}

// ListFlights returns the schedule, filtered by the q parameter
func (h *Handler) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.Service.Flights(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if flights == nil {
		flights = []models.FlightSummary{}
	}
	respondJSON(w, http.StatusOK, flights)
}

// StartSession opens a booking session for the caller
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.StartSession(r.Context(), r.Cookies())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.Service.GetState(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// CancelSession discards the session
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.Service.Cancel(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (h *Handler) SelectFlight(w http.ResponseWriter, r *http.Request) {
	var req models.SelectFlightRequest
	if !decode(r, &req) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.Service.SelectFlight(r.Context(), mux.Vars(r)["sessionId"], req.FlightNumber)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// SetPassenger replaces the passenger form
func (h *Handler) SetPassenger(w http.ResponseWriter, r *http.Request) {
	var req models.PassengerRequest
	if !decode(r, &req) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	info := models.PassengerInfo{
		Name:            req.Name,
		DiscordID:       req.DiscordID,
		UserID:          req.UserID,
		SpecialRequests: req.SpecialRequests,
	}
	state, err := h.Service.SetPassenger(r.Context(), mux.Vars(r)["sessionId"], info)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// GoToStep moves the wizard to another step
func (h *Handler) GoToStep(w http.ResponseWriter, r *http.Request) {
	var req models.StepRequest
	if !decode(r, &req) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.Service.GoTo(r.Context(), mux.Vars(r)["sessionId"], req.Step)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// ToggleService adds or removes an optional service
func (h *Handler) ToggleService(w http.ResponseWriter, r *http.Request) {
	var req models.ServiceRequest
	if !decode(r, &req) || req.Name == "" {
		respondError(w, http.StatusBadRequest, "service name required")
		return
	}

	state, err := h.Service.ToggleService(r.Context(), mux.Vars(r)["sessionId"], req.Name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (h *Handler) RemoveService(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := h.Service.RemoveService(r.Context(), vars["sessionId"], vars["name"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (h *Handler) SelectSeat(w http.ResponseWriter, r *http.Request) {
	var req models.SeatRequest
	if !decode(r, &req) || req.Seat == "" {
		respondError(w, http.StatusBadRequest, "seat required")
		return
	}

	state, err := h.Service.SelectSeat(r.Context(), mux.Vars(r)["sessionId"], req.Seat)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (h *Handler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.SeatMap(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// GetSummary returns the confirmation summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Submit creates the booking
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	state, err := h.Service.Submit(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// GetBoardingPass streams the boarding pass. With download set it is sent as
// an attachment in the requested format.
func (h *Handler) GetBoardingPass(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	download := false
	if v := query.Get("download"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid download flag")
			return
		}
		download = parsed
	}

	artifact, err := h.Service.BoardingPass(r.Context(), mux.Vars(r)["sessionId"], query.Get("format"), download)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	if download {
		w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.FileName+`"`)
	} else {
		w.Header().Set("Content-Disposition", "inline")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}
