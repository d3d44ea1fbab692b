package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/internal/domain/repository"
	"airtrail-sync/pkg/logger"
	"airtrail-sync/pkg/metrics"
	"airtrail-sync/pkg/utils"
)

type fakeFlightLog struct {
	flights []*entity.FlightRecord
	saved   []*entity.FlightUpdate
	saveErr error
}

func (f *fakeFlightLog) GetByID(ctx context.Context, id int64) (*entity.FlightRecord, error) {
	for _, flight := range f.flights {
		if flight.ID == id {
			return flight, nil
		}
	}
	return nil, entity.ErrFlightNotFound
}

func (f *fakeFlightLog) List(ctx context.Context) ([]*entity.FlightRecord, error) {
	return f.flights, nil
}

func (f *fakeFlightLog) Save(ctx context.Context, update *entity.FlightUpdate) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, update)
	return nil
}

type fakeRenderer struct {
	pages map[string]string // keyed by URL; missing key means transport error
	urls  []string
}

func (f *fakeRenderer) RenderPage(ctx context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	html, ok := f.pages[url]
	if !ok {
		return "", &entity.TransportError{Op: "render page", Err: errors.New("browser crashed")}
	}
	return html, nil
}

type fakeReports struct {
	entries []*entity.FailureEntry
}

func (f *fakeReports) Save(ctx context.Context, entry *entity.FailureEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeAircraftTypes struct {
	byName map[string]string
}

func (f *fakeAircraftTypes) GetByName(ctx context.Context, name string) (*entity.AircraftType, error) {
	icao, ok := f.byName[name]
	if !ok {
		return nil, errors.New("record not found")
	}
	return &entity.AircraftType{Name: name, ICAOCode: icao}, nil
}

// deltaRowPage renders a minimal tracking page with one matching row.
func deltaRowPage(dateLabel, aircraftLabel string) string {
	return fmt.Sprintf(`<html><body>
<div class="flight_row">
  <span class="flight_date">%s</span>
  <a class="entity_link" href="/en/aircraft/x">%s</a>
  <a class="entity_link" href="/en/plane/N123DL">N123DL</a>
  <span class="state_badge">Status</span>
  <span class="state_badge">On Time</span>
  <span class="state_badge">Landed</span>
  <a class="details_btn" href="https://www.flightera.net/en/flight/Delta+Air+Lines/DL3181/2024-03-15/KDEN">Details</a>
</div>
</body></html>`, dateLabel, aircraftLabel)
}

const deltaPageURL = "https://flightera.test/en/flight/Delta+Air+Lines/DL3181"

func testReconciler(flightLog *fakeFlightLog, renderer *fakeRenderer, reports repository.FailureReportRepository, types repository.AircraftTypeRepository) *Reconciler {
	parser := utils.NewFlighteraParser(logger.NewNop())

	r := NewReconciler(flightLog, renderer, reports, types, parser,
		metrics.NewMetrics("test"), logger.NewNop(), "https://flightera.test/")
	r.now = func() time.Time {
		return time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	}
	return r
}

func TestReconcileByIDUpdatesRecord(t *testing.T) {
	flightLog := &fakeFlightLog{flights: []*entity.FlightRecord{denverFlight(42, "DL 3181", "2024-03-15")}}
	renderer := &fakeRenderer{pages: map[string]string{
		deltaPageURL: deltaRowPage("15. Mar 2024", "Boeing 737-800 (B738)"),
	}}

	r := testReconciler(flightLog, renderer, nil, nil)
	require.NoError(t, r.ReconcileByID(context.Background(), 42))

	require.Len(t, flightLog.saved, 1)
	update := flightLog.saved[0]
	assert.Equal(t, int64(42), update.ID)
	assert.Equal(t, "B738", update.Aircraft)
	assert.Equal(t, "N123DL", update.AircraftReg)
	assert.Contains(t, update.Note, "Flightera:")

	// The page URL is built from airline name and normalized number.
	assert.Equal(t, []string{deltaPageURL}, renderer.urls)
}

func TestReconcileByIdentityMatchesThenUpdates(t *testing.T) {
	other := denverFlight(1, "UA 100", "2024-03-15")
	target := denverFlight(2, "DL 3181", "2024-03-15")
	flightLog := &fakeFlightLog{flights: []*entity.FlightRecord{other, target}}
	renderer := &fakeRenderer{pages: map[string]string{
		deltaPageURL: deltaRowPage("15. Mar 2024", "Boeing 737-800 (B738)"),
	}}

	r := testReconciler(flightLog, renderer, nil, nil)
	require.NoError(t, r.ReconcileByIdentity(context.Background(), "dl3181", "2024-03-15", "den"))

	require.Len(t, flightLog.saved, 1)
	assert.Equal(t, int64(2), flightLog.saved[0].ID)
}

func TestReconcileSkipsFutureFlight(t *testing.T) {
	flightLog := &fakeFlightLog{flights: []*entity.FlightRecord{denverFlight(1, "DL 3181", "2024-05-01")}}
	renderer := &fakeRenderer{pages: map[string]string{}}

	r := testReconciler(flightLog, renderer, nil, nil)
	require.NoError(t, r.ReconcileByID(context.Background(), 1))

	assert.Empty(t, renderer.urls, "future flights must not be scraped")
	assert.Empty(t, flightLog.saved)
}

func TestReconcileSkipsCompleteRecord(t *testing.T) {
	record := denverFlight(1, "DL 3181", "2024-03-15")
	record.Aircraft = &entity.Aircraft{ICAO: "B738"}
	record.AircraftReg = strPtr("N123DL")
	record.Note = strPtr("---\nDeparture: On Time\nFlightera: https://www.flightera.net/x")

	flightLog := &fakeFlightLog{flights: []*entity.FlightRecord{record}}
	renderer := &fakeRenderer{pages: map[string]string{}}

	r := testReconciler(flightLog, renderer, nil, nil)
	require.NoError(t, r.ReconcileByID(context.Background(), 1))

	assert.Empty(t, renderer.urls, "complete records must not be scraped")
	assert.Empty(t, flightLog.saved)
}

func TestReconcileMissingIdentityIsHardStop(t *testing.T) {
	record := denverFlight(1, "", "2024-03-15")
	record.Airline = nil

	flightLog := &fakeFlightLog{flights: []*entity.FlightRecord{record}}
	renderer := &fakeRenderer{pages: map[string]string{}}

	r := testReconciler(flightLog, renderer, nil, nil)
	err := r.ReconcileByID(context.Background(), 1)

	var missing *entity.MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"airline", "flightNumber"}, missing.Fields)
	assert.Empty(t, renderer.urls)
}

func TestReconcileMismatchAbortsMerge(t *testing.T) {
	// The page lists a codeshare operated by someone else entirely.
	record := denverFlight(1, "DL 3181", "2024-03-15")
	record.Airline = &entity.Airline{Name: "United", ICAO: "UAL"}

	page := deltaRowPage("15. Mar 2024", "Boeing 737-800 (B738)")
	flightLog := &fakeFlightLog{flights: []*entity.FlightRecord{record}}
	renderer := &fakeRenderer{pages: map[string]string{
		"https://flightera.test/en/flight/United/DL3181": page,
	}}

	r := testReconciler(flightLog, renderer, nil, nil)
	err := r.ReconcileByID(context.Background(), 1)

	var mismatch *entity.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Empty(t, flightLog.saved, "mismatched facts must never be merged")
}

func TestReconcileNoFactsForDateIsNonFatal(t *testing.T) {
	flightLog := &fakeFlightLog{flights: []*entity.FlightRecord{denverFlight(1, "DL 3181", "2024-03-15")}}
	renderer := &fakeRenderer{pages: map[string]string{
		deltaPageURL: deltaRowPage("14. Mar 2024", "Boeing 737-800 (B738)"),
	}}

	r := testReconciler(flightLog, renderer, nil, nil)
	require.NoError(t, r.ReconcileByID(context.Background(), 1))
	assert.Empty(t, flightLog.saved)
}

func TestReconcileEnrichesAircraftTypeFromReference(t *testing.T) {
	flightLog := &fakeFlightLog{flights: []*entity.FlightRecord{denverFlight(1, "DL 3181", "2024-03-15")}}
	renderer := &fakeRenderer{pages: map[string]string{
		deltaPageURL: deltaRowPage("15. Mar 2024", "Boeing 737-800"),
	}}
	types := &fakeAircraftTypes{byName: map[string]string{"Boeing 737-800": "B738"}}

	r := testReconciler(flightLog, renderer, nil, types)
	require.NoError(t, r.ReconcileByID(context.Background(), 1))

	require.Len(t, flightLog.saved, 1)
	assert.Equal(t, "B738", flightLog.saved[0].Aircraft)
}

func TestReconcileAllIsolatesFailures(t *testing.T) {
	good := denverFlight(1, "DL 3181", "2024-03-15")

	missingAirline := denverFlight(2, "DL 9999", "2024-03-15")
	missingAirline.Airline = nil

	// No page registered for United, so rendering fails.
	transportBroken := denverFlight(3, "UA 100", "2024-03-15")
	transportBroken.Airline = &entity.Airline{Name: "United", ICAO: "UAL"}

	future := denverFlight(4, "DL 3181", "2024-05-01")

	flightLog := &fakeFlightLog{flights: []*entity.FlightRecord{good, missingAirline, transportBroken, future}}
	renderer := &fakeRenderer{pages: map[string]string{
		deltaPageURL: deltaRowPage("15. Mar 2024", "Boeing 737-800 (B738)"),
	}}
	reports := &fakeReports{}

	r := testReconciler(flightLog, renderer, reports, nil)
	report, err := r.ReconcileAll(context.Background())
	require.NoError(t, err, "a failing record must not abort the batch")

	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Failures, 2)

	// Failures carry identifying data and are persisted to the sink.
	require.Len(t, reports.entries, 2)
	assert.Equal(t, int64(2), reports.entries[0].FlightID)
	assert.Equal(t, report.RunID, reports.entries[0].RunID)
	assert.NotEmpty(t, reports.entries[0].Message)
	assert.Equal(t, int64(3), reports.entries[1].FlightID)

	// The good record still went through.
	require.Len(t, flightLog.saved, 1)
	assert.Equal(t, int64(1), flightLog.saved[0].ID)
}
