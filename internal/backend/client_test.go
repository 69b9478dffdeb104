package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"booking-wizard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client(), nil)
}

func TestClient_Schedule(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get/schedule", r.URL.Path)
		w.Write([]byte(`[{"flight_number":"AU101","departure":"Riga RIX","arrival":"Oslo OSL","datetime":1700000000,"seatmap":"Default","pax_service":"[\"Meal\"]","boarding_pass_default":"kja"}]`))
	})

	flights, err := client.Schedule(context.Background())
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "AU101", flights[0].FlightNumber)
	assert.Equal(t, "Default", flights[0].Seatmap)
	assert.Equal(t, "kja", flights[0].BoardingPassDefault)
	assert.Equal(t, int64(1700000000), flights[0].Datetime)
}

func TestClient_Flight_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := client.Flight(context.Background(), "AU999")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_FlightBookings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get/bookings/AU101", r.URL.Path)
		w.Write([]byte(`[{"id":"AB12","seat":"1A","serve_class":"Economy"}]`))
	})

	bookings, err := client.FlightBookings(context.Background(), "AU101")
	require.NoError(t, err)
	assert.Equal(t, []models.ExistingBooking{{ID: "AB12", Seat: "1A"}}, bookings)
}

func TestClient_FlightConfigs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get/flight_configs/service", r.URL.Path)
		w.Write([]byte(`{"success":true,"type":"service","configs":[{"id":3,"name":"Meal","type":"service","data":{"price":15},"description":"Hot meal"}]}`))
	})

	configs, err := client.FlightConfigs(context.Background(), models.ConfigService)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "Meal", configs[0].Name)
	assert.JSONEq(t, `{"price":15}`, string(configs[0].Data))
}

func TestClient_FlightConfigs_Error(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Failed to load configurations"}`))
	})

	_, err := client.FlightConfigs(context.Background(), models.ConfigCabinLayout)
	require.Error(t, err)
	assert.Equal(t, "Failed to load configurations", err.Error())
}

func TestClient_CurrentUser(t *testing.T) {
	t.Run("logged in forwards cookies", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("session")
			if assert.NoError(t, err) {
				assert.Equal(t, "abc", cookie.Value)
			}
			w.Write([]byte(`{"id":42,"nickname":"Jane Doe","social_id":"123","virtual_id":"456"}`))
		})

		user, err := client.WithCookies([]*http.Cookie{{Name: "session", Value: "abc"}}).CurrentUser(context.Background())
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(42), user.ID)
		assert.Equal(t, "456", user.VirtualID)
	})

	t.Run("anonymous is not an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"User not found"}`))
		})

		user, err := client.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestClient_CreateBooking(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantID     string
		wantStatus int
		wantMsg    string
	}{
		{
			name:   "created",
			status: http.StatusOK,
			body:   `{"booking_id":"X7K2","message":"Booking created successfully"}`,
			wantID: "X7K2",
		},
		{
			name:       "seat taken",
			status:     http.StatusBadRequest,
			body:       `{"error":"Seat already booked"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Seat already booked",
		},
		{
			name:       "error without message",
			status:     http.StatusInternalServerError,
			body:       `{}`,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    MsgBookingFailed,
		},
		{
			name:       "html error page",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantStatus: http.StatusBadGateway,
			wantMsg:    MsgInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.BookingRequest
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/post/booking/", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			req := models.BookingRequest{
				FlightNumber:  "AU101",
				Seat:          "1A",
				ServeClass:    "Economy",
				PaxService:    "Meal",
				UserID:        models.AnonymousUserID,
				BoardingPass:  "default",
				PassengerName: "Jane Doe",
				SocialID:      "123",
				VirtualID:     "456",
			}
			confirmation, err := client.CreateBooking(context.Background(), req)

			assert.Equal(t, req, got)
			if tt.wantID != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, confirmation.BookingID)
				return
			}
			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestClient_BoardingPass(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get/boarding_pass/X7K2/kja":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("PNGDATA"))
		case "/api/get/boarding_pass_pdf/X7K2/kja":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("PDFDATA"))
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"Booking not found"}`)
		}
	})

	png, err := client.BoardingPass(context.Background(), "X7K2", "kja", models.FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGDATA"), png)

	pdf, err := client.BoardingPass(context.Background(), "X7K2", "kja", models.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, []byte("PDFDATA"), pdf)

	_, err = client.BoardingPass(context.Background(), "NOPE", "kja", models.FormatPNG)
	require.Error(t, err)
	assert.Equal(t, "Booking not found", err.Error())

	_, err = client.BoardingPass(context.Background(), "X7K2", "kja", "gif")
	assert.Error(t, err)
}
