package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devkichauhan/reliaquest/internal/employee/models"
	dErrors "github.com/devkichauhan/reliaquest/pkg/domain-errors"
	"github.com/devkichauhan/reliaquest/pkg/platform/httputil"
	"github.com/devkichauhan/reliaquest/pkg/requestcontext"
)

// BasePath is where the employee routes are mounted.
const BasePath = "/api/v1/employee"

// DirectoryService defines the employee directory operations used by handlers.
type DirectoryService interface {
	FetchAll(ctx context.Context) ([]models.Employee, error)
	FindByNameSubstring(ctx context.Context, query string) ([]models.Employee, error)
	FetchByID(ctx context.Context, id string) (*models.Employee, error)
	HighestSalary(ctx context.Context) (int, error)
	TopTenEarnerNames(ctx context.Context) ([]string, error)
	Create(ctx context.Context, req models.CreateRequest) (*models.Employee, error)
	DeleteByID(ctx context.Context, id string) (string, error)
}

// Handler handles HTTP requests for the employee directory.
type Handler struct {
	service DirectoryService
	logger  *slog.Logger
}

func New(service DirectoryService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the employee routes. Fixed paths are registered before
// /{id} so they are never read as ids.
func (h *Handler) Register(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Get("/search/{searchString}", h.HandleSearchByName)
		r.Get("/highestSalary", h.HandleHighestSalary)
		r.Get("/topTenHighestEarningEmployeeNames", h.HandleTopTenEarnerNames)
		r.Get("/{id}", h.HandleGetByID)
		r.Post("/", h.HandleCreate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleGetAll handles GET /api/v1/employee.
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "fetching all employees", "request_id", requestcontext.RequestID(ctx))

	employees, err := h.service.FetchAll(ctx)
	if err != nil {
		h.writeFailure(ctx, w, "fetch all employees", err)
		return
	}
	writeList(w, employees)
}

// HandleSearchByName handles GET /api/v1/employee/search/{searchString}.
func (h *Handler) HandleSearchByName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := chi.URLParam(r, "searchString")
	h.logger.InfoContext(ctx, "searching employees by name",
		"request_id", requestcontext.RequestID(ctx),
		"query", query,
	)

	employees, err := h.service.FindByNameSubstring(ctx, query)
	if err != nil {
		h.writeFailure(ctx, w, "search employees", err)
		return
	}
	writeList(w, employees)
}

// HandleGetByID handles GET /api/v1/employee/{id}. Upstream success without
// data answers 204.
func (h *Handler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	h.logger.InfoContext(ctx, "fetching employee by id",
		"request_id", requestcontext.RequestID(ctx),
		"employee_id", id,
	)

	employee, err := h.service.FetchByID(ctx, id)
	if err != nil {
		h.writeFailure(ctx, w, "fetch employee", err)
		return
	}
	if employee == nil {
		httputil.WriteNoContent(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, employee)
}

// HandleHighestSalary handles GET /api/v1/employee/highestSalary.
func (h *Handler) HandleHighestSalary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "fetching highest salary", "request_id", requestcontext.RequestID(ctx))

	salary, err := h.service.HighestSalary(ctx)
	if err != nil {
		h.writeFailure(ctx, w, "highest salary", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, salary)
}

// HandleTopTenEarnerNames handles GET /api/v1/employee/topTenHighestEarningEmployeeNames.
func (h *Handler) HandleTopTenEarnerNames(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "fetching top ten earner names", "request_id", requestcontext.RequestID(ctx))

	names, err := h.service.TopTenEarnerNames(ctx)
	if err != nil {
		h.writeFailure(ctx, w, "top ten earners", err)
		return
	}
	writeList(w, names)
}

// HandleCreate handles POST /api/v1/employee.
// Input: { "name": "Devki", "salary": 100, "age": 30, "title": "Engineer", "email": "d@x.io" }
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger)
	if !ok {
		return
	}
	h.logger.InfoContext(ctx, "creating employee",
		"request_id", requestcontext.RequestID(ctx),
		"name", req.Name,
	)

	employee, err := h.service.Create(ctx, *req)
	if err != nil {
		h.writeFailure(ctx, w, "create employee", err)
		return
	}
	if employee == nil {
		h.logger.ErrorContext(ctx, "employee service returned no employee after create",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "employee was not created"))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, employee)
}

// HandleDelete handles DELETE /api/v1/employee/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	h.logger.InfoContext(ctx, "deleting employee",
		"request_id", requestcontext.RequestID(ctx),
		"employee_id", id,
	)

	msg, err := h.service.DeleteByID(ctx, id)
	if err != nil {
		h.writeFailure(ctx, w, "delete employee", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, msg)
}

// writeList answers 204 for an empty list and 200 otherwise.
func writeList[T any](w http.ResponseWriter, items []T) {
	if len(items) == 0 {
		httputil.WriteNoContent(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, action string, err error) {
	h.logger.ErrorContext(ctx, action+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	WriteFailure(w, err)
}
