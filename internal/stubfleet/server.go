package stubfleet

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Server is a local fleet of deliberately misbehaving endpoints for
// rehearsing monitor configs before pointing them at production: fixed
// statuses, endpoints that fail a few times then recover, slow answers.
type Server struct {
	Logger *zap.Logger

	mu   sync.Mutex
	hits map[string]int
}

func NewServer(l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, hits: map[string]int{}}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/status/{code}", s.handleStatus)
	r.Post("/status/{code}", s.handleStatus)
	r.Get("/flaky/{fails}/{code}", s.handleFlaky)
	r.Get("/delay/{d}", s.handleDelay)

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 100 || code > 599 {
		http.Error(w, "bad status code", http.StatusBadRequest)
		return
	}
	s.Logger.Debug("stub_status", zap.Int("code", code), zap.String("method", r.Method))
	w.WriteHeader(code)
	w.Write([]byte(http.StatusText(code)))
}

// handleFlaky answers {code} for the first {fails} hits on a given path,
// then 200. Counters are keyed by path, so /flaky/2/500 and /flaky/3/500
// recover independently.
func (s *Server) handleFlaky(w http.ResponseWriter, r *http.Request) {
	fails, err := strconv.Atoi(chi.URLParam(r, "fails"))
	if err != nil || fails < 0 {
		http.Error(w, "bad fail count", http.StatusBadRequest)
		return
	}
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 100 || code > 599 {
		http.Error(w, "bad status code", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.hits[r.URL.Path]++
	n := s.hits[r.URL.Path]
	s.mu.Unlock()

	s.Logger.Debug("stub_flaky", zap.String("path", r.URL.Path), zap.Int("hit", n))
	if n <= fails {
		w.WriteHeader(code)
		w.Write([]byte(http.StatusText(code)))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("recovered"))
}

func (s *Server) handleDelay(w http.ResponseWriter, r *http.Request) {
	d, err := time.ParseDuration(chi.URLParam(r, "d"))
	if err != nil || d < 0 {
		http.Error(w, "bad duration", http.StatusBadRequest)
		return
	}
	select {
	case <-time.After(d):
	case <-r.Context().Done():
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("slept " + d.String()))
}
