package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/internal/domain/repository"
	"airtrail-sync/pkg/logger"
	"airtrail-sync/pkg/metrics"
	"airtrail-sync/pkg/utils"
)

// outcome classifies a single-record reconciliation result.
type outcome int

const (
	outcomeUpdated outcome = iota
	outcomeUnchanged
	outcomeSkipped
)

// Reconciler sequences one flight through match, skip checks, page
// render, fact extraction, identity validation, merge and save. Over a
// batch every record is processed independently and failures are
// accumulated rather than propagated.
type Reconciler struct {
	flightLog     repository.FlightLogRepository
	renderer      repository.PageRenderer
	reports       repository.FailureReportRepository
	aircraftTypes repository.AircraftTypeRepository
	parser        *utils.FlighteraParser
	metrics       *metrics.Metrics
	logger        logger.Logger
	baseURL       string
	now           func() time.Time
}

// NewReconciler creates a new reconciler. The failure-report and
// aircraft-type repositories are optional and may be nil.
func NewReconciler(
	flightLog repository.FlightLogRepository,
	renderer repository.PageRenderer,
	reports repository.FailureReportRepository,
	aircraftTypes repository.AircraftTypeRepository,
	parser *utils.FlighteraParser,
	metrics *metrics.Metrics,
	logger logger.Logger,
	flighteraBaseURL string,
) *Reconciler {
	return &Reconciler{
		flightLog:     flightLog,
		renderer:      renderer,
		reports:       reports,
		aircraftTypes: aircraftTypes,
		parser:        parser,
		metrics:       metrics,
		logger:        logger,
		baseURL:       strings.TrimRight(flighteraBaseURL, "/"),
		now:           time.Now,
	}
}

// ReconcileByID fetches one flight directly and reconciles it.
func (r *Reconciler) ReconcileByID(ctx context.Context, id int64) error {
	record, err := r.flightLog.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.reconcileRecord(ctx, record)
	return err
}

// ReconcileByIdentity searches the whole log for the flight identified
// by flight number, departure date and departing airport, then
// reconciles the first match.
func (r *Reconciler) ReconcileByIdentity(ctx context.Context, flightNumber, date, airport string) error {
	records, err := r.flightLog.List(ctx)
	if err != nil {
		return err
	}

	record, err := MatchFlight(records, flightNumber, date, airport)
	if err != nil {
		return err
	}

	r.logger.Info("Matched flight record",
		"flightId", record.ID,
		"flightNumber", record.FlightNumber,
		"date", record.Date)

	_, err = r.reconcileRecord(ctx, record)
	return err
}

// ReconcileAll reconciles every flight in the log. Failures are
// captured per record, persisted to the failure report sink and
// returned in the batch report; one bad record never halts the batch.
func (r *Reconciler) ReconcileAll(ctx context.Context) (*entity.BatchReport, error) {
	records, err := r.flightLog.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &entity.BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
	}
	r.logger.Info("Starting batch reconciliation", "runId", report.RunID, "flights", len(records))

	for _, record := range records {
		report.Processed++

		result, err := r.reconcileRecord(ctx, record)
		if err != nil {
			r.recordFailure(ctx, report, record, err)
			continue
		}

		if result == outcomeSkipped {
			report.Skipped++
		} else {
			report.Succeeded++
		}
	}

	report.FinishedAt = r.now()
	r.logger.Info("Batch reconciliation completed",
		"runId", report.RunID,
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"failed", len(report.Failures))

	return report, nil
}

// reconcileRecord runs the full pipeline for a single record.
func (r *Reconciler) reconcileRecord(ctx context.Context, record *entity.FlightRecord) (outcome, error) {
	started := r.now()
	defer func() {
		r.metrics.ProcessingTime.Observe(r.now().Sub(started).Seconds())
	}()
	r.metrics.FlightsProcessed.Inc()

	log := r.logger.With("flightId", record.ID, "flightNumber", record.FlightNumber, "date", record.Date)

	if err := requireIdentity(record); err != nil {
		return outcomeSkipped, err
	}

	targetDate, err := time.Parse(utils.DATE_LAYOUT, record.Date)
	if err != nil {
		return outcomeSkipped, &entity.MissingDataError{FlightID: record.ID, Fields: []string{"date"}}
	}

	// A future flight cannot have operational facts yet.
	if record.Date > r.now().Format(utils.DATE_LAYOUT) {
		log.Info("Skipping future flight")
		return outcomeSkipped, nil
	}

	if isComplete(record) {
		log.Info("Skipping already reconciled flight")
		return outcomeSkipped, nil
	}

	pageURL := r.buildFlightURL(record.Airline.Name, record.FlightNumber)
	log.Info("Rendering tracking page", "url", pageURL)

	html, err := r.renderer.RenderPage(ctx, pageURL)
	if err != nil {
		r.metrics.ErrorsCount.WithLabelValues("render").Inc()
		return outcomeSkipped, err
	}
	r.metrics.PagesRendered.Inc()

	facts, err := r.parser.ExtractFacts(html, targetDate)
	if err != nil {
		if errors.Is(err, entity.ErrFactsNotFound) {
			// The page may not list this date at all. Expected, move on.
			log.Info("No facts on source page for this date")
			return outcomeSkipped, nil
		}
		r.metrics.ErrorsCount.WithLabelValues("extract").Inc()
		return outcomeSkipped, err
	}

	r.enrichAircraftType(ctx, facts, log)

	if err := ValidateIdentity(record, facts); err != nil {
		r.metrics.IdentityMismatches.Inc()
		return outcomeSkipped, err
	}

	update, changed := MergeFacts(record, facts)
	if !changed {
		log.Info("Record already up to date")
		return outcomeUnchanged, nil
	}

	if err := r.flightLog.Save(ctx, update); err != nil {
		r.metrics.ErrorsCount.WithLabelValues("save").Inc()
		return outcomeSkipped, err
	}
	r.metrics.FlightsUpdated.Inc()

	log.Info("Flight record updated",
		"aircraft", update.Aircraft,
		"registration", update.AircraftReg)

	return outcomeUpdated, nil
}

// enrichAircraftType fills the aircraft ICAO code from the reference
// table when the scraped label carried only a model name. A lookup miss
// is not an error.
func (r *Reconciler) enrichAircraftType(ctx context.Context, facts *utils.FlightFacts, log logger.Logger) {
	if r.aircraftTypes == nil || facts.AircraftICAO != "" || facts.AircraftName == "" {
		return
	}

	aircraftType, err := r.aircraftTypes.GetByName(ctx, facts.AircraftName)
	if err != nil {
		log.Debug("Aircraft type lookup missed", "name", facts.AircraftName, "error", err)
		return
	}

	facts.AircraftICAO = aircraftType.ICAOCode
	log.Info("Resolved aircraft type from reference data",
		"name", facts.AircraftName,
		"icao", aircraftType.ICAOCode)
}

func (r *Reconciler) recordFailure(ctx context.Context, report *entity.BatchReport, record *entity.FlightRecord, cause error) {
	r.metrics.ErrorsCount.WithLabelValues("reconcile").Inc()

	entry := entity.FailureEntry{
		RunID:        report.RunID,
		FlightID:     record.ID,
		FlightNumber: record.FlightNumber,
		Date:         record.Date,
		Message:      cause.Error(),
		OccurredAt:   r.now(),
	}
	report.Failures = append(report.Failures, entry)

	r.logger.Error("Flight reconciliation failed",
		"runId", report.RunID,
		"flightId", record.ID,
		"flightNumber", record.FlightNumber,
		"error", cause)

	if r.reports == nil {
		return
	}
	if err := r.reports.Save(ctx, &entry); err != nil {
		r.logger.Error("Failed to persist failure entry", "flightId", record.ID, "error", err)
	}
}

// buildFlightURL forms the flight-history page URL from the airline
// name and normalized flight number.
func (r *Reconciler) buildFlightURL(airlineName, flightNumber string) string {
	airline := strings.ReplaceAll(strings.TrimSpace(airlineName), " ", "+")
	return fmt.Sprintf("%s/en/flight/%s/%s", r.baseURL, airline, NormalizeFlightNumber(flightNumber))
}

// requireIdentity checks the fields the scrape cannot proceed without.
// Their absence is a hard stop for the record, distinct from a
// scrape-not-found outcome.
func requireIdentity(record *entity.FlightRecord) error {
	var missing []string
	if record.Airline == nil || strings.TrimSpace(record.Airline.Name) == "" {
		missing = append(missing, "airline")
	}
	if strings.TrimSpace(record.FlightNumber) == "" {
		missing = append(missing, "flightNumber")
	}
	if strings.TrimSpace(record.Date) == "" {
		missing = append(missing, "date")
	}

	if len(missing) > 0 {
		return &entity.MissingDataError{FlightID: record.ID, Fields: missing}
	}
	return nil
}

// isComplete reports whether the record already carries everything a
// scrape could add, making the network round trip redundant.
func isComplete(record *entity.FlightRecord) bool {
	hasAircraft := record.Aircraft != nil && record.Aircraft.ICAO != ""
	hasReg := record.AircraftReg != nil && *record.AircraftReg != ""
	hasMarker := strings.Contains(record.NoteText(), SourceLinkPrefix)
	return hasAircraft && hasReg && hasMarker
}
