package mockapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/practisync/sikka-client/internal/mockapi/keystore"
	"github.com/practisync/sikka-client/internal/task"
	"github.com/rs/zerolog/log"
)

// DefaultKeyLifetime is the lifetime of request keys minted by the mock
// upstream unless a service overrides it
const DefaultKeyLifetime = 24 * time.Hour

// Service represents the mock upstream API service.
// It mimics the v4 surface of the real practice-management API: the key
// endpoint plus the patient, claim, transaction, payment type and claim
// payment endpoints, backed by a seeded dataset.
type Service struct {
	server *http.Server

	AppID   string
	AppKey  string
	Offices map[string]string
	Data    *Dataset

	// KeyLifetime overrides DefaultKeyLifetime; tests shorten it to drive
	// the client's refresh behaviour
	KeyLifetime time.Duration

	keys      *keystore.Store
	sweepTask *task.RepeatingTask
	writer    *writer
}

// Initialize sets up the grant store and response writer.
// It has to be called before Router, Startup or any endpoint handler is used.
func (service *Service) Initialize() error {
	keys, err := keystore.New()
	if err != nil {
		return err
	}
	service.keys = keys
	service.writer = &writer{
		internalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the mock upstream experienced an unexpected error")
		},
	}
	if service.KeyLifetime <= 0 {
		service.KeyLifetime = DefaultKeyLifetime
	}
	return nil
}

// Router builds the HTTP router serving the mock upstream surface
func (service *Service) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RedirectSlashes)
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.writeError(writer, http.StatusNotFound, errNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.writeError(writer, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})

	// Register the key endpoint
	router.Post("/v4/request_key", service.EndpointRequestKey)

	// Register the resource endpoints
	router.Get("/v4/patients", service.MiddlewareVerifyKey(service.EndpointGetPatients))
	router.Get("/v4/claims", service.MiddlewareVerifyKey(service.EndpointGetClaims))
	router.Get("/v4/transactions", service.MiddlewareVerifyKey(service.EndpointGetTransactions))
	router.Get("/v4/payment_types", service.MiddlewareVerifyKey(service.EndpointGetPaymentTypes))
	router.Post("/v4/claim_payment", service.MiddlewareVerifyKey(service.EndpointPostClaimPayment))

	return router
}

// Startup starts up the mock upstream on the given listen address and
// schedules the expired grant sweep
func (service *Service) Startup(address string) error {
	service.sweepTask = task.NewRepeating(func() {
		n, err := service.keys.SweepExpired()
		if err != nil {
			log.Error().Err(err).Msg("could not sweep expired grants")
		} else if n > 0 {
			log.Debug().Int("amount", n).Msg("swept expired grants")
		}
	}, time.Minute)
	service.sweepTask.Start()

	server := &http.Server{
		Addr:    address,
		Handler: service.Router(),
	}
	service.server = server
	return server.ListenAndServe()
}

// Shutdown shuts down the mock upstream
func (service *Service) Shutdown() {
	if service.sweepTask != nil {
		service.sweepTask.Stop(false)
		service.sweepTask = nil
	}
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}
