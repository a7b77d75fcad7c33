package main

import (
	"os"
	"os/signal"

	"github.com/practisync/sikka-client/internal/mockapi"
	"github.com/practisync/sikka-client/sikka"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Serves a local mock of the upstream practice-management API, seeded with a
// small demo office. Useful for developing against the client library without
// real office credentials.
func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	address := os.Getenv("SK_MOCK_LISTEN_ADDRESS")
	if address == "" {
		address = "localhost:8085"
	}

	service := &mockapi.Service{
		AppID:   "demo-app",
		AppKey:  "demo-app-key",
		Offices: map[string]string{"O-1001": "demo-office-secret"},
		Data:    demoData(),
	}
	if err := service.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("could not initialize the mock upstream")
	}

	log.Info().Str("address", address).Msg("starting up the mock upstream...")
	errs := make(chan error, 1)
	go func() {
		errs <- service.Startup(address)
	}()
	defer func() {
		log.Info().Msg("shutting down...")
		service.Shutdown()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)
	select {
	case err := <-errs:
		log.Fatal().Err(err).Msg("the mock upstream raised an unexpected error")
	case <-shutdown:
	}
}

func demoData() *mockapi.Dataset {
	return mockapi.NewDataset(
		[]sikka.Patient{
			{PatientID: "P-1", Firstname: "John", Lastname: "Doe", Birthdate: "1985-04-12", Gender: "M", PracticeID: "1"},
			{PatientID: "P-2", Firstname: "Jane", Lastname: "Miller", Birthdate: "1990-11-02", Gender: "F", PracticeID: "1"},
		},
		[]sikka.Claim{
			{ClaimSrNo: "123", ClaimID: "CLM-123", PatientID: "P-1", Status: "Submitted", SubmittedDate: "2024-05-01", TotalFee: "250.00"},
		},
		[]sikka.Transaction{
			{TransactionSrNo: "T-1", ClaimSrNo: "123", PatientID: "P-1", TransactionType: "Procedure", ProcedureCode: "D1110", Amount: "125.00", TransactionDate: "2024-05-01"},
			{TransactionSrNo: "T-2", ClaimSrNo: "123", PatientID: "P-1", TransactionType: "Payment", Amount: "50.00", TransactionDate: "2024-05-03"},
		},
		[]sikka.PaymentType{
			{Code: "CHK", Description: "Check", PracticeID: "1", InsurancePayment: true},
			{Code: "CC", Description: "Credit card", PracticeID: "1", PatientPayment: true},
		},
	)
}
