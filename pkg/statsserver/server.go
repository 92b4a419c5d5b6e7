package statsserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cuemby/chainkv/pkg/database"
	"github.com/cuemby/chainkv/pkg/metrics"
)

// Server is chainkv's operational HTTP surface.
type Server struct {
	db  *database.Database
	mux *http.ServeMux
}

// New builds a Server backed by db. db may be nil, in which case
// /debug/store reports an empty namespace list.
func New(db *database.Database) *Server {
	s := &Server{db: db, mux: http.NewServeMux()}

	s.mux.Handle("/healthz", metrics.HealthHandler())
	s.mux.Handle("/readyz", metrics.ReadyHandler())
	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.HandleFunc("/debug/store", s.debugStoreHandler)

	return s
}

// Start runs the HTTP server on addr until it returns an error.
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// Handler returns the HTTP handler for embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

type namespaceReport struct {
	Name     string   `json:"name"`
	RootKeys []string `json:"root_keys,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type debugStoreResponse struct {
	Namespaces []namespaceReport `json:"namespaces"`
}

// debugStoreHandler reports every namespace directory under the
// Database's path and the root keys each one has recorded a first
// write for.
func (s *Server) debugStoreHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := debugStoreResponse{Namespaces: []namespaceReport{}}
	if s.db != nil {
		names, err := s.db.ListAll()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, name := range names {
			report := namespaceReport{Name: name}
			keys, err := s.db.ListRootKeys(name)
			if err != nil {
				report.Error = err.Error()
			} else {
				for _, k := range keys {
					report.RootKeys = append(report.RootKeys, string(k))
				}
			}
			resp.Namespaces = append(resp.Namespaces, report)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
