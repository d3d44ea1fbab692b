package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	domainRepo "airtrail-sync/internal/domain/repository"
	"airtrail-sync/internal/infrastructure/config"
	"airtrail-sync/internal/infrastructure/persistence"
	airtrailRepo "airtrail-sync/internal/interface/repository"
	"airtrail-sync/internal/usecase"
	"airtrail-sync/pkg/logger"
	"airtrail-sync/pkg/metrics"
	"airtrail-sync/pkg/utils"
)

var (
	flightID     int64
	flightNumber string
	flightDate   string
	airport      string
	runAll       bool
	debug        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "airtrail-sync",
		Short: "Reconcile Airtrail flight records with Flightera operational data",
		Long: `airtrail-sync looks up a flight in the Airtrail log, scrapes its
operational details (aircraft type, registration, departure/arrival
status) from Flightera and merges them back into the record.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().Int64Var(&flightID, "id", 0, "unique ID of the flight to fetch directly")
	rootCmd.Flags().StringVar(&flightNumber, "flight-number", "", `flight number to search for (e.g. "DL 5450")`)
	rootCmd.Flags().StringVar(&flightDate, "date", "", "departure date for the search (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&airport, "airport", "", "departing airport IATA/ICAO code for the search")
	rootCmd.Flags().BoolVar(&runAll, "all", false, "reconcile every flight in the log")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.MarkFlagsRequiredTogether("flight-number", "date", "airport")
	rootCmd.MarkFlagsMutuallyExclusive("id", "flight-number")
	rootCmd.MarkFlagsMutuallyExclusive("id", "all")
	rootCmd.MarkFlagsMutuallyExclusive("all", "flight-number")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	searchRequested := flightNumber != "" && flightDate != "" && airport != ""
	if flightID == 0 && !searchRequested && !runAll {
		return fmt.Errorf("either --id, --all, or all of --flight-number, --date and --airport are required")
	}

	log := logger.NewLogger(debug)
	log.Info("Starting Airtrail sync")

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flightLog := airtrailRepo.NewAirtrailRepository(cfg.AirtrailBaseURL, cfg.AirtrailAPIKey, cfg.HTTPTimeout, log)
	renderer := airtrailRepo.NewChromedpRenderer(cfg.RenderTimeout, cfg.RenderSettleWait, log)
	parser := utils.NewFlighteraParser(log)
	m := metrics.NewMetrics("airtrail_sync")

	var reports domainRepo.FailureReportRepository
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer mongoClient.Disconnect(context.Background())
		reports = airtrailRepo.NewMongoFailureReportRepository(db)
	}

	var aircraftTypes domainRepo.AircraftTypeRepository
	if cfg.PostgresDSN != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		aircraftTypes = airtrailRepo.NewGormAircraftTypeRepository(gormDB)
	}

	reconciler := usecase.NewReconciler(flightLog, renderer, reports, aircraftTypes, parser, m, log, cfg.FlighteraBaseURL)

	var runErr error
	switch {
	case flightID != 0:
		log.Info("Reconciling flight by ID", "id", flightID)
		runErr = reconciler.ReconcileByID(ctx, flightID)
	case runAll:
		batch, err := reconciler.ReconcileAll(ctx)
		if err != nil {
			runErr = err
			break
		}
		fmt.Printf("Run %s: %d processed, %d succeeded, %d skipped, %d failed\n",
			batch.RunID, batch.Processed, batch.Succeeded, batch.Skipped, len(batch.Failures))
		for _, failure := range batch.Failures {
			fmt.Printf("  flight %d (%s %s): %s\n",
				failure.FlightID, failure.FlightNumber, failure.Date, failure.Message)
		}
	default:
		log.Info("Reconciling flight by identity",
			"flightNumber", flightNumber, "date", flightDate, "airport", airport)
		runErr = reconciler.ReconcileByIdentity(ctx, flightNumber, flightDate, airport)
	}

	if err := m.Push(cfg.PushgatewayURL, cfg.MetricsJob); err != nil {
		log.Error("Failed to push metrics", "error", err)
	}

	return runErr
}
