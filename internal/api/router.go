package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()

	// Apply middleware
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware(logger))

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(JSONMiddleware)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	// Flight routes
	api.HandleFunc("/flights", h.ListFlights).Methods(http.MethodGet, http.MethodOptions)

	// Session routes
	api.HandleFunc("/sessions", h.StartSession).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}", h.GetSession).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}", h.CancelSession).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/flight", h.SelectFlight).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/passenger", h.SetPassenger).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/step", h.GoToStep).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/services", h.ToggleService).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/services/{name}", h.RemoveService).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/seat", h.SelectSeat).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/seatmap", h.GetSeatMap).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/summary", h.GetSummary).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/submit", h.Submit).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionId}/boarding-pass", h.GetBoardingPass).Methods(http.MethodGet, http.MethodOptions)

	return r
}
