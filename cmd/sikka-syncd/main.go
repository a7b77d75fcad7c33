package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/practisync/sikka-client/internal/config"
	"github.com/practisync/sikka-client/internal/mirror"
	"github.com/practisync/sikka-client/internal/mirrorapi"
	"github.com/practisync/sikka-client/internal/storage/postgres"
	"github.com/practisync/sikka-client/internal/task"
	"github.com/practisync/sikka-client/logging"
	"github.com/practisync/sikka-client/sikka"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Route the client library's debug logs through zerolog
	logging.Set(logging.NewZerolog(log.Logger))

	// Initialize the PostgreSQL storage driver
	log.Info().Msg("initializing database connection...")
	driver := postgres.New(cfg.PostgresDSN)
	if err := driver.Initialize(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("could not initialize the database connection")
	}
	defer driver.Close()

	// Create the API client and acquire an initial request key
	log.Info().Str("base_url", cfg.APIBaseURL).Str("office_id", cfg.APIOfficeID).Msg("authenticating against the upstream API...")
	client := sikka.New(sikka.Config{
		AppID:     cfg.APIAppID,
		AppKey:    cfg.APIAppKey,
		OfficeID:  cfg.APIOfficeID,
		SecretKey: cfg.APIOfficeSecret,
		BaseURL:   cfg.APIBaseURL,
	})
	if err := client.Authenticate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("could not authenticate against the upstream API")
	}

	// Create the syncer and schedule the repeating mirror task
	syncer := mirror.New(client, driver, cfg.SyncPageSize)
	defer syncer.Close()
	run := func() {
		report, err := syncer.Run(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("mirror run failed")
			return
		}
		log.Info().
			Int("patients", report.Patients).
			Int("claims", report.Claims).
			Int("transactions", report.Transactions).
			Int("skipped", report.Skipped).
			Msg("mirror run finished")
	}
	run()
	syncTask := task.NewRepeating(run, cfg.SyncInterval)
	syncTask.Start()
	defer syncTask.Stop(false)

	// Serve the read-only mirror query API
	log.Info().Str("address", cfg.MirrorListenAddress).Msg("starting up the mirror query API...")
	api := &mirrorapi.Service{Storage: driver}
	defer api.Shutdown()
	errs := make(chan error, 1)
	go func() {
		errs <- api.Startup(cfg.MirrorListenAddress)
	}()

	log.Info().Msg("done!")
	defer log.Info().Msg("shutting down...")

	// Wait for the application to be terminated
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)
	select {
	case err := <-errs:
		log.Fatal().Err(err).Msg("the mirror query API raised an unexpected error")
	case <-shutdown:
	}
}
