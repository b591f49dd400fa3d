package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/devkichauhan/reliaquest/internal/employee/envelope"
	"github.com/devkichauhan/reliaquest/internal/employee/failure"
	"github.com/devkichauhan/reliaquest/internal/employee/metrics"
	"github.com/devkichauhan/reliaquest/internal/employee/models"
	"github.com/devkichauhan/reliaquest/internal/employee/topk"

	s "github.com/devkichauhan/reliaquest/pkg/string"
)

// TopEarnerCount is how many names TopTenEarnerNames returns at most.
const TopEarnerCount = 10

// Upstream is the employee service the directory delegates to.
type Upstream interface {
	ListAll(ctx context.Context) (*models.Envelope, error)
	GetByID(ctx context.Context, id string) (*models.Envelope, error)
	Create(ctx context.Context, req models.CreateRequest) (*models.Envelope, error)
	DeleteByID(ctx context.Context, id string) error
}

// Service implements the employee directory on top of Upstream. It keeps no
// state between calls: every search and aggregate re-lists the directory.
type Service struct {
	upstream Upstream
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(upstream Upstream, opts ...Option) (*Service, error) {
	if upstream == nil {
		return nil, errors.New("upstream client is required")
	}
	svc := &Service{
		upstream: upstream,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// FetchAll returns every employee. No employees is an empty slice.
func (svc *Service) FetchAll(ctx context.Context) ([]models.Employee, error) {
	env, err := svc.upstream.ListAll(ctx)
	if err != nil {
		return nil, svc.fail(ctx, "fetch_all", err)
	}
	employees, err := envelope.DecodeMany[models.Employee](env)
	if err != nil {
		return nil, svc.fail(ctx, "fetch_all", err)
	}

	if svc.metrics != nil {
		svc.metrics.SetDirectorySize(len(employees))
	}
	svc.logger.InfoContext(ctx, "fetched employees", "count", len(employees))
	return employees, nil
}

// FindByNameSubstring returns employees whose name contains query, ignoring
// case. An empty query matches everyone.
func (svc *Service) FindByNameSubstring(ctx context.Context, query string) ([]models.Employee, error) {
	employees, err := svc.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if s.ContainsFold(e.Name, query) {
			matched = append(matched, e)
		}
	}
	svc.logger.InfoContext(ctx, "searched employees by name", "query", query, "matched", len(matched))
	return matched, nil
}

// FetchByID returns the employee with id. Upstream success with no data
// yields nil, nil; an upstream 404 is a failure.KindNotFound error.
func (svc *Service) FetchByID(ctx context.Context, id string) (*models.Employee, error) {
	env, err := svc.upstream.GetByID(ctx, id)
	if err != nil {
		return nil, svc.fail(ctx, "fetch_by_id", err)
	}
	employee, err := envelope.DecodeOne[models.Employee](env)
	if err != nil {
		return nil, svc.fail(ctx, "fetch_by_id", err)
	}

	svc.logger.InfoContext(ctx, "fetched employee", "id", id, "found", employee != nil)
	return employee, nil
}

// HighestSalary returns the largest salary, or 0 for an empty directory.
func (svc *Service) HighestSalary(ctx context.Context) (int, error) {
	employees, err := svc.FetchAll(ctx)
	if err != nil {
		return 0, err
	}

	highest := 0
	for i, e := range employees {
		if i == 0 || e.Salary > highest {
			highest = e.Salary
		}
	}

	if svc.metrics != nil {
		svc.metrics.SetTopEarnerSalary(highest)
	}
	svc.logger.InfoContext(ctx, "computed highest salary", "salary", highest)
	return highest, nil
}

// TopTenEarnerNames returns up to ten names ordered by salary descending.
// Which of several equally paid employees fills the last slot is not
// specified.
func (svc *Service) TopTenEarnerNames(ctx context.Context) ([]string, error) {
	employees, err := svc.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	top := topk.Select(employees, TopEarnerCount, func(e models.Employee) int { return e.Salary })
	names := make([]string, len(top))
	for i, e := range top {
		names[i] = e.Name
	}

	svc.logger.InfoContext(ctx, "computed top earners", "count", len(names))
	return names, nil
}

// Create forwards req upstream. Upstream success with no data yields
// nil, nil; callers treat that as a failed creation.
func (svc *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Employee, error) {
	env, err := svc.upstream.Create(ctx, req)
	if err != nil {
		return nil, svc.fail(ctx, "create", err)
	}
	employee, err := envelope.DecodeOne[models.Employee](env)
	if err != nil {
		return nil, svc.fail(ctx, "create", err)
	}

	if employee == nil {
		svc.logger.WarnContext(ctx, "upstream returned no employee after create", "name", req.Name)
		return nil, nil
	}
	svc.logger.InfoContext(ctx, "created employee", "id", employee.ID)
	return employee, nil
}

// DeleteByID deletes the employee and returns the confirmation message.
func (svc *Service) DeleteByID(ctx context.Context, id string) (string, error) {
	if err := svc.upstream.DeleteByID(ctx, id); err != nil {
		return "", svc.fail(ctx, "delete", err)
	}
	svc.logger.InfoContext(ctx, "deleted employee", "id", id)
	return models.DeleteConfirmation, nil
}

// fail logs err and returns it unchanged.
func (svc *Service) fail(ctx context.Context, operation string, err error) error {
	attrs := []any{"operation", operation, "error", err}
	var fe *failure.Error
	if errors.As(err, &fe) {
		attrs = append(attrs, "kind", fe.Kind.String(), "status_code", fe.StatusCode)
	}
	svc.logger.ErrorContext(ctx, "employee operation failed", attrs...)
	return err
}
