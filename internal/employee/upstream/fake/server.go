// Package fake is an in-memory employee service speaking the upstream
// envelope protocol. It backs the mock upstream process and the tests.
package fake

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/devkichauhan/reliaquest/internal/employee/models"
)

type Server struct {
	mu        sync.RWMutex
	employees map[string]models.Employee
	order     []string
	failNext  []int
	listCalls atomic.Int64

	limiter *rate.Limiter
	logger  *slog.Logger
}

type Option func(*Server)

// WithRateLimit answers 429 once the token bucket is empty. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		employees: make(map[string]models.Employee),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register mounts the employee routes on r.
func (s *Server) Register(r chi.Router) {
	r.Use(s.limit, s.injectFailure)
	r.Get("/", s.handleList)
	r.Post("/", s.handleCreate)
	r.Get("/{id}", s.handleGet)
	r.Delete("/{id}", s.handleDelete)
}

// Handler serves the employee routes under prefix, e.g. /api/v1/employee.
func (s *Server) Handler(prefix string) http.Handler {
	r := chi.NewRouter()
	r.Route(prefix, s.Register)
	return r
}

// Add stores e, assigning an id when it has none, and returns the stored record.
func (s *Server) Add(e models.Employee) models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(e)
}

func (s *Server) addLocked(e models.Employee) models.Employee {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, exists := s.employees[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.employees[e.ID] = e
	return e
}

// Seed adds n generated employees.
func (s *Server) Seed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range n {
		first := firstNames[rand.IntN(len(firstNames))]
		last := lastNames[rand.IntN(len(lastNames))]
		s.addLocked(models.Employee{
			Name:   first + " " + last,
			Salary: 30000 + rand.IntN(470000),
			Age:    16 + rand.IntN(60),
			Title:  titles[rand.IntN(len(titles))],
			Email:  strings.ToLower(fmt.Sprintf("%s.%s@company.com", first, last)),
		})
	}
}

// Reset removes every employee and pending failure.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = make(map[string]models.Employee)
	s.order = nil
	s.failNext = nil
}

// FailNext makes the next request answer with status instead of being served.
// Calls queue up in order.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, status)
}

func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.employees)
}

// Employees returns the stored employees in insertion order.
func (s *Server) Employees() []models.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Employee, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.employees[id])
	}
	return out
}

func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.logger.Info("rate limited", "method", r.Method, "path", r.URL.Path)
			writeFailure(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var status int
		if len(s.failNext) > 0 {
			status = s.failNext[0]
			s.failNext = s.failNext[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			writeFailure(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListCalls reports how many list requests were served.
func (s *Server) ListCalls() int {
	return int(s.listCalls.Load())
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.listCalls.Add(1)
	writeData(w, http.StatusOK, s.Employees())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	e, ok := s.employees[id]
	s.mu.RUnlock()

	if !ok {
		writeFailure(w, http.StatusNotFound, "Employee not found")
		return
	}
	writeData(w, http.StatusOK, e)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Salary < 0 {
		writeFailure(w, http.StatusBadRequest, "Invalid employee input")
		return
	}

	e := s.Add(models.Employee{
		Name:   req.Name,
		Salary: req.Salary,
		Age:    req.Age,
		Title:  req.Title,
		Email:  req.Email,
	})
	s.logger.Info("created employee", "id", e.ID)
	writeData(w, http.StatusOK, e)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.employees[id]
	if ok {
		delete(s.employees, id)
		s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	}
	s.mu.Unlock()

	if !ok {
		writeFailure(w, http.StatusNotFound, "Employee not found")
		return
	}
	s.logger.Info("deleted employee", "id", id)
	writeData(w, http.StatusOK, true)
}

func writeData[T any](w http.ResponseWriter, status int, data T) {
	writeJSON(w, status, models.Response[T]{Data: data, Status: models.StatusHandled})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Status: models.StatusFailed, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var (
	firstNames = []string{"Aarav", "Devki", "Pooja", "Liam", "Olivia", "Noah", "Emma", "Mateo", "Sofia", "Kenji", "Amara", "Lucas"}
	lastNames  = []string{"Chauhan", "Sharma", "Smith", "Garcia", "Tanaka", "Okafor", "Muller", "Rossi", "Kim", "Nguyen"}
	titles     = []string{"Engineer", "Senior Engineer", "Manager", "Designer", "Analyst", "Director", "Accountant", "Recruiter"}
)
