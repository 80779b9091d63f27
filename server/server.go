package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/landomo-com/landomo-norway-finn/storage"
	"github.com/landomo-com/landomo-norway-finn/utils"
)

// Server exposes stored listings over a small read-only HTTP API.
type Server struct {
	reader storage.ListingReader
	logger *utils.Logger
	router *mux.Router
}

// New creates a Server with its routes registered.
func New(reader storage.ListingReader, logger *utils.Logger) *Server {
	s := &Server{
		reader: reader,
		logger: logger,
		router: mux.NewRouter(),
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/listings", s.handleListListings).Methods(http.MethodGet)
	s.router.HandleFunc("/api/listings/{id}", s.handleGetListing).Methods(http.MethodGet)

	return s
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe blocks serving the API on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("[server] Listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := storage.ListingFilter{
		PropertyType:    q.Get("property_type"),
		City:            q.Get("city"),
		TransactionType: q.Get("transaction_type"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	listings, err := s.reader.Fetch(filter)
	if err != nil {
		s.logger.Error("[server] Fetch failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(listings),
		"listings": listings,
	})
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	listing, err := s.reader.FetchByID(id)
	if err != nil {
		s.logger.Error("[server] FetchByID(%s) failed: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}
	if listing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
