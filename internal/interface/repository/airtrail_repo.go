// internal/interface/repository/airtrail_repo.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/internal/domain/repository"
	"airtrail-sync/pkg/logger"
)

// AirtrailRepository talks to the Airtrail flight-log REST API
type AirtrailRepository struct {
	logger  logger.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAirtrailRepository creates a new Airtrail API repository
func NewAirtrailRepository(baseURL, apiKey string, timeout time.Duration, logger logger.Logger) repository.FlightLogRepository {
	return &AirtrailRepository{
		logger:  logger,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetByID fetches a single flight by its ID
func (r *AirtrailRepository) GetByID(ctx context.Context, id int64) (*entity.FlightRecord, error) {
	url := fmt.Sprintf("%s/api/flight/get/%d", r.baseURL, id)

	resp, err := r.get(ctx, url)
	if err != nil {
		return nil, &entity.TransportError{Op: "fetch flight", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, entity.ErrFlightNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &entity.TransportError{Op: "fetch flight", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var record entity.FlightRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, &entity.MalformedResponseError{Op: "fetch flight", Detail: err.Error()}
	}

	return &record, nil
}

// List fetches every flight in the log
func (r *AirtrailRepository) List(ctx context.Context) ([]*entity.FlightRecord, error) {
	url := fmt.Sprintf("%s/api/flight/list", r.baseURL)

	resp, err := r.get(ctx, url)
	if err != nil {
		return nil, &entity.TransportError{Op: "fetch flight list", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &entity.TransportError{Op: "fetch flight list", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var envelope struct {
		Flights json.RawMessage `json:"flights"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &entity.MalformedResponseError{Op: "fetch flight list", Detail: err.Error()}
	}
	if len(envelope.Flights) == 0 {
		return nil, &entity.MalformedResponseError{Op: "fetch flight list", Detail: "'flights' key not found"}
	}

	var flights []*entity.FlightRecord
	if err := json.Unmarshal(envelope.Flights, &flights); err != nil {
		return nil, &entity.MalformedResponseError{Op: "fetch flight list", Detail: err.Error()}
	}

	r.logger.Info("Fetched flight list", "count", len(flights))
	return flights, nil
}

// Save submits an update payload. The endpoint upserts keyed by the
// payload's id, so resubmitting the same payload is harmless.
func (r *AirtrailRepository) Save(ctx context.Context, update *entity.FlightUpdate) error {
	jsonData, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	url := fmt.Sprintf("%s/api/flight/save", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &entity.TransportError{Op: "save flight", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return &entity.TransportError{
			Op:  "save flight",
			Err: fmt.Errorf("status %d: %v", resp.StatusCode, errorBody),
		}
	}

	r.logger.Info("Saved flight update", "flightId", update.ID)
	return nil
}

func (r *AirtrailRepository) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	return r.client.Do(req)
}
