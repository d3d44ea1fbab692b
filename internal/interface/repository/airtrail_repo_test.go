package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/pkg/logger"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGetByIDDecodesRecord(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flight/get/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 42,
			"flightNumber": "DL 3181",
			"date": "2024-03-15",
			"from": {"iata": "DEN", "icao": "KDEN", "tz": "America/Denver"},
			"to": {"iata": "ATL", "icao": "KATL", "tz": "America/New_York"},
			"departure": "2024-03-15T14:30:00Z",
			"airline": {"name": "Delta Air Lines", "icao": "DAL"},
			"aircraft": null,
			"aircraftReg": null,
			"note": null
		}`))
	})

	repo := NewAirtrailRepository(server.URL, testAPIKey, 5*time.Second, logger.NewNop())
	record, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), record.ID)
	assert.Equal(t, "DL 3181", record.FlightNumber)
	require.NotNil(t, record.From)
	assert.Equal(t, "America/Denver", record.From.Timezone)
	require.NotNil(t, record.Departure)
	assert.True(t, record.Departure.Equal(time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)))
	assert.Nil(t, record.Aircraft)
	assert.Nil(t, record.AircraftReg)
	assert.Nil(t, record.Note)
}

func TestGetByIDNotFound(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	repo := NewAirtrailRepository(server.URL, testAPIKey, 5*time.Second, logger.NewNop())
	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, entity.ErrFlightNotFound)
}

func TestGetByIDMalformedBody(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<!doctype html><html>login page</html>`))
	})

	repo := NewAirtrailRepository(server.URL, testAPIKey, 5*time.Second, logger.NewNop())
	_, err := repo.GetByID(context.Background(), 7)

	var malformed *entity.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestListDecodesEnvelope(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flight/list", r.URL.Path)
		w.Write([]byte(`{"flights": [{"id": 1, "flightNumber": "DL3181"}, {"id": 2, "flightNumber": "UA100"}]}`))
	})

	repo := NewAirtrailRepository(server.URL, testAPIKey, 5*time.Second, logger.NewNop())
	flights, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, flights, 2)
	assert.Equal(t, int64(1), flights[0].ID)
	assert.Equal(t, "UA100", flights[1].FlightNumber)
}

func TestListMissingFlightsKey(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})

	repo := NewAirtrailRepository(server.URL, testAPIKey, 5*time.Second, logger.NewNop())
	_, err := repo.List(context.Background())

	var malformed *entity.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Detail, "flights")
}

func TestSaveSubmitsPayload(t *testing.T) {
	var received map[string]interface{}
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/flight/save", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true}`))
	})

	repo := NewAirtrailRepository(server.URL, testAPIKey, 5*time.Second, logger.NewNop())
	err := repo.Save(context.Background(), &entity.FlightUpdate{
		ID:          42,
		Date:        "2024-03-15",
		From:        "KDEN",
		To:          "KATL",
		Aircraft:    "B738",
		AircraftReg: "N123DL",
	})
	require.NoError(t, err)

	assert.Equal(t, float64(42), received["id"])
	assert.Equal(t, "KDEN", received["from"])
	// Legacy fields never reach the wire.
	assert.NotContains(t, received, "duration")
	assert.NotContains(t, received, "aircraftId")
}

func TestSaveServerError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "boom"}`))
	})

	repo := NewAirtrailRepository(server.URL, testAPIKey, 5*time.Second, logger.NewNop())
	err := repo.Save(context.Background(), &entity.FlightUpdate{ID: 1})

	var transport *entity.TransportError
	assert.ErrorAs(t, err, &transport)
}
