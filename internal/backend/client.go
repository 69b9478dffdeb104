// Package backend is a typed client for the airline REST API the booking
// wizard consumes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"booking-wizard/internal/models"

	"go.uber.org/zap"
)

// Messages shown when the backend gives nothing better
const (
	MsgInvalidResponse = "Invalid response from server"
	MsgBookingFailed   = "Booking failed"
)

// APIError is a non-success reply from the backend. Message is user-facing.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// AsAPIError unwraps err into an *APIError if it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type errorBody struct {
	Error string `json:"error"`
}

type configsBody struct {
	Success bool                  `json:"success"`
	Type    models.ConfigKind     `json:"type"`
	Configs []models.FlightConfig `json:"configs"`
	Error   string                `json:"error"`
}

// Client talks to the backend. The zero timeout leaves deadlines to the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cookies    []*http.Cookie
	logger     *zap.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// WithCookies returns a copy of the client that forwards the caller's session cookies.
func (c *Client) WithCookies(cookies []*http.Cookie) *Client {
	clone := *c
	clone.cookies = cookies
	return &clone
}

// Schedule lists every scheduled flight
func (c *Client) Schedule(ctx context.Context) ([]models.FlightSummary, error) {
	var flights []models.FlightSummary
	if err := c.getJSON(ctx, "/api/get/schedule", "Failed to load flights", &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

// Flight re-resolves a single flight from the schedule by flight number.
func (c *Client) Flight(ctx context.Context, flightNumber string) (*models.FlightSummary, error) {
	flights, err := c.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	for i := range flights {
		if flights[i].FlightNumber == flightNumber {
			return &flights[i], nil
		}
	}
	return nil, &APIError{StatusCode: http.StatusNotFound, Message: "Flight not found"}
}

// FlightBookings returns seat occupancy for a flight
func (c *Client) FlightBookings(ctx context.Context, flightNumber string) ([]models.ExistingBooking, error) {
	var bookings []models.ExistingBooking
	path := "/api/get/bookings/" + url.PathEscape(flightNumber)
	if err := c.getJSON(ctx, path, "Failed to load bookings", &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// FlightConfigs lists the active configurations of one kind
func (c *Client) FlightConfigs(ctx context.Context, kind models.ConfigKind) ([]models.FlightConfig, error) {
	var body configsBody
	path := "/api/get/flight_configs/" + url.PathEscape(string(kind))
	if err := c.getJSON(ctx, path, "Failed to load configurations", &body); err != nil {
		return nil, err
	}
	return body.Configs, nil
}

// CurrentUser returns the logged-in user. A non-2xx reply means nobody is
// logged in and yields (nil, nil).
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode current user: %w", err)
	}
	return &user, nil
}

// CreateBooking posts the aggregate booking record.
func (c *Client) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/post/booking/", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read booking response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err != nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: MsgInvalidResponse}
		}
		msg := eb.Error
		if msg == "" {
			msg = MsgBookingFailed
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var confirmation models.BookingConfirmation
	if err := json.Unmarshal(body, &confirmation); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: MsgInvalidResponse}
	}
	if confirmation.BookingID == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: MsgInvalidResponse}
	}

	c.logger.Info("Booking created",
		zap.String("booking_id", confirmation.BookingID),
		zap.String("flight_number", req.FlightNumber),
		zap.String("seat", req.Seat))
	return &confirmation, nil
}

// BoardingPass fetches the rendered artifact. On a non-success status the
// response body becomes the error message.
func (c *Client) BoardingPass(ctx context.Context, bookingID, style, format string) ([]byte, error) {
	var path string
	switch format {
	case models.FormatPNG:
		path = "/api/get/boarding_pass/"
	case models.FormatPDF:
		path = "/api/get/boarding_pass_pdf/"
	default:
		return nil, fmt.Errorf("unsupported boarding pass format %q", format)
	}
	path += url.PathEscape(bookingID) + "/" + url.PathEscape(style)

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read boarding pass: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("Failed to generate boarding pass: %d", resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path, fallback string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallback
		var eb errorBody
		if json.NewDecoder(resp.Body).Decode(&eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
