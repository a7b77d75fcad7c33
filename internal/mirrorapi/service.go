// Package mirrorapi exposes the mirrored practice data of the local storage
// over a small read-only HTTP API
package mirrorapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/practisync/sikka-client/internal/storage"
)

// Service represents the mirror query API service
type Service struct {
	server *http.Server

	Storage storage.Driver
}

// Router builds the HTTP router serving the mirror query surface
func (service *Service) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RedirectSlashes)
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		writeError(writer, http.StatusNotFound, "resource not found")
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		writeError(writer, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/status", service.EndpointGetStatus)
	router.Get("/patients", service.EndpointGetPatients)
	router.Get("/patients/{patientID}", service.EndpointGetPatient)
	router.Get("/claims", service.EndpointGetClaims)
	router.Get("/claims/{claimSrNo}/transactions", service.EndpointGetClaimTransactions)

	return router
}

// Startup starts up the mirror query API on the given listen address
func (service *Service) Startup(address string) error {
	server := &http.Server{
		Addr:    address,
		Handler: service.Router(),
	}
	service.server = server
	return server.ListenAndServe()
}

// Shutdown shuts down the mirror query API
func (service *Service) Shutdown() {
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}
