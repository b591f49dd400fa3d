package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/devkichauhan/reliaquest/internal/employee/failure"
	"github.com/devkichauhan/reliaquest/internal/employee/metrics"
	"github.com/devkichauhan/reliaquest/internal/employee/models"
	"github.com/devkichauhan/reliaquest/internal/employee/service/mocks"
	"github.com/devkichauhan/reliaquest/internal/employee/upstream"
	"github.com/devkichauhan/reliaquest/internal/employee/upstream/fake"
	"github.com/devkichauhan/reliaquest/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	upstream *mocks.MockUpstream
	metrics  *metrics.Metrics
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.upstream = mocks.NewMockUpstream(s.ctrl)
	s.metrics = metrics.New(nil)

	svc, err := New(s.upstream, WithMetrics(s.metrics))
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func dataEnvelope(t *testing.T, data any) *models.Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &models.Envelope{Data: raw, Status: models.StatusHandled}
}

func devkiAndPooja() []models.Employee {
	return []models.Employee{
		{ID: "1", Name: "Devki", Salary: 100, Age: 30, Title: "Engineer", Email: "e@x"},
		{ID: "2", Name: "Pooja", Salary: 200, Age: 28, Title: "Manager", Email: "p@x"},
	}
}

func (s *ServiceSuite) expectList(employees []models.Employee) {
	s.upstream.EXPECT().ListAll(gomock.Any()).Return(dataEnvelope(s.T(), employees), nil)
}

func (s *ServiceSuite) TestNew_RequiresUpstream() {
	_, err := New(nil)
	s.Error(err)
}

func (s *ServiceSuite) TestFetchAll() {
	s.Run("returns decoded employees", func() {
		s.expectList(devkiAndPooja())

		got, err := s.service.FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Equal(devkiAndPooja(), got)
		s.Equal(2.0, promtest.ToFloat64(s.metrics.DirectorySize))
	})

	s.Run("null data is an empty directory", func() {
		s.upstream.EXPECT().ListAll(gomock.Any()).Return(&models.Envelope{Data: json.RawMessage("null")}, nil)

		got, err := s.service.FetchAll(s.ctx)
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)
	})

	s.Run("no envelope is an empty directory", func() {
		s.upstream.EXPECT().ListAll(gomock.Any()).Return(nil, nil)

		got, err := s.service.FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("schema mismatch is a decode failure", func() {
		s.upstream.EXPECT().ListAll(gomock.Any()).
			Return(&models.Envelope{Data: json.RawMessage(`[{"id":"1"}]`)}, nil)

		_, err := s.service.FetchAll(s.ctx)
		s.True(failure.Is(err, failure.KindDecode))
	})
}

func (s *ServiceSuite) TestFindByNameSubstring() {
	employees := []models.Employee{
		{ID: "1", Name: "Devki Chauhan", Salary: 100},
		{ID: "2", Name: "Pooja", Salary: 200},
		{ID: "3", Name: "DEVON", Salary: 300},
	}

	s.Run("case-insensitive match", func() {
		s.expectList(employees)

		got, err := s.service.FindByNameSubstring(s.ctx, "dev")
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal("1", got[0].ID)
		s.Equal("3", got[1].ID)
	})

	s.Run("empty query matches everyone", func() {
		s.expectList(employees)

		got, err := s.service.FindByNameSubstring(s.ctx, "")
		s.Require().NoError(err)
		s.Equal(employees, got)
	})

	s.Run("no match", func() {
		s.expectList(employees)

		got, err := s.service.FindByNameSubstring(s.ctx, "zed")
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)
	})
}

func (s *ServiceSuite) TestFetchByID() {
	s.Run("found", func() {
		s.upstream.EXPECT().GetByID(gomock.Any(), "1").Return(dataEnvelope(s.T(), devkiAndPooja()[0]), nil)

		got, err := s.service.FetchByID(s.ctx, "1")
		s.Require().NoError(err)
		s.Equal(&devkiAndPooja()[0], got)
	})

	s.Run("null data is no value", func() {
		s.upstream.EXPECT().GetByID(gomock.Any(), "1").Return(&models.Envelope{Data: json.RawMessage("null")}, nil)

		got, err := s.service.FetchByID(s.ctx, "1")
		s.Require().NoError(err)
		s.Nil(got)
	})

	s.Run("not found propagates without listing", func() {
		s.upstream.EXPECT().GetByID(gomock.Any(), "9").Return(nil, failure.FromStatus(upstream.OpGet, http.StatusNotFound, ""))

		got, err := s.service.FetchByID(s.ctx, "9")
		s.Nil(got)
		s.True(failure.Is(err, failure.KindNotFound))
	})
}

func (s *ServiceSuite) TestHighestSalary() {
	s.Run("maximum salary", func() {
		s.expectList(devkiAndPooja())

		got, err := s.service.HighestSalary(s.ctx)
		s.Require().NoError(err)
		s.Equal(200, got)
		s.Equal(200.0, promtest.ToFloat64(s.metrics.TopEarnerSalary))
	})

	s.Run("empty directory is zero", func() {
		s.expectList([]models.Employee{})

		got, err := s.service.HighestSalary(s.ctx)
		s.Require().NoError(err)
		s.Equal(0, got)
	})
}

func (s *ServiceSuite) TestTopTenEarnerNames() {
	s.Run("fewer than ten", func() {
		s.expectList(devkiAndPooja())

		got, err := s.service.TopTenEarnerNames(s.ctx)
		s.Require().NoError(err)
		s.Equal([]string{"Pooja", "Devki"}, got)
	})

	s.Run("fifty increasing salaries", func() {
		employees := make([]models.Employee, 0, 50)
		for i := range 50 {
			employees = append(employees, models.Employee{
				ID: fmt.Sprint(i), Name: fmt.Sprintf("emp-%d", 100+i), Salary: 100 + i,
			})
		}
		s.expectList(employees)

		got, err := s.service.TopTenEarnerNames(s.ctx)
		s.Require().NoError(err)

		want := make([]string, 0, 10)
		for salary := 149; salary >= 140; salary-- {
			want = append(want, fmt.Sprintf("emp-%d", salary))
		}
		s.Equal(want, got)
	})

	s.Run("empty directory", func() {
		s.expectList([]models.Employee{})

		got, err := s.service.TopTenEarnerNames(s.ctx)
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)
	})
}

func (s *ServiceSuite) TestListDependentOperationsPropagateUnavailable() {
	unavailable := failure.Wrap(failure.KindUnavailable, upstream.OpList, errors.New("connection refused"), "request failed")

	ops := map[string]func() error{
		"highest salary": func() error {
			_, err := s.service.HighestSalary(s.ctx)
			return err
		},
		"top ten": func() error {
			_, err := s.service.TopTenEarnerNames(s.ctx)
			return err
		},
		"search": func() error {
			_, err := s.service.FindByNameSubstring(s.ctx, "a")
			return err
		},
		"fetch all": func() error {
			_, err := s.service.FetchAll(s.ctx)
			return err
		},
	}

	for name, op := range ops {
		s.Run(name, func() {
			s.upstream.EXPECT().ListAll(gomock.Any()).Return(nil, unavailable)

			err := op()
			s.Require().Error(err)
			s.True(failure.Is(err, failure.KindUnavailable))
		})
	}
}

func (s *ServiceSuite) TestEachAggregateRelists() {
	s.upstream.EXPECT().ListAll(gomock.Any()).Return(dataEnvelope(s.T(), devkiAndPooja()), nil).Times(3)

	_, err := s.service.HighestSalary(s.ctx)
	s.Require().NoError(err)
	_, err = s.service.TopTenEarnerNames(s.ctx)
	s.Require().NoError(err)
	_, err = s.service.FindByNameSubstring(s.ctx, "p")
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestCreate() {
	req := models.CreateRequest{Name: "Devki", Salary: 100, Age: 30, Title: "Engineer", Email: "e@x"}

	s.Run("returns created employee", func() {
		s.upstream.EXPECT().Create(gomock.Any(), req).Return(dataEnvelope(s.T(), devkiAndPooja()[0]), nil)

		got, err := s.service.Create(s.ctx, req)
		s.Require().NoError(err)
		s.Equal("1", got.ID)
	})

	s.Run("no data is no value", func() {
		s.upstream.EXPECT().Create(gomock.Any(), req).Return(&models.Envelope{}, nil)

		got, err := s.service.Create(s.ctx, req)
		s.Require().NoError(err)
		s.Nil(got)
	})

	s.Run("rejected propagates", func() {
		s.upstream.EXPECT().Create(gomock.Any(), req).Return(nil, failure.FromStatus(upstream.OpCreate, http.StatusBadRequest, ""))

		_, err := s.service.Create(s.ctx, req)
		s.True(failure.Is(err, failure.KindRejected))
	})
}

func (s *ServiceSuite) TestDeleteByID() {
	s.Run("confirmation message", func() {
		s.upstream.EXPECT().DeleteByID(gomock.Any(), "1").Return(nil)

		got, err := s.service.DeleteByID(s.ctx, "1")
		s.Require().NoError(err)
		s.Equal("Employee deleted successfully", got)
	})

	s.Run("rate limited propagates", func() {
		s.upstream.EXPECT().DeleteByID(gomock.Any(), "1").
			Return(failure.FromStatus(upstream.OpDelete, http.StatusTooManyRequests, ""))

		got, err := s.service.DeleteByID(s.ctx, "1")
		s.Empty(got)
		s.True(failure.Is(err, failure.KindRateLimited))
	})
}

// Round trip through the real client against the in-memory upstream.
func TestCreateThenFetchRoundTrip(t *testing.T) {
	fakeUpstream := fake.New()
	srv := httptest.NewServer(fakeUpstream.Handler("/api/v1/employee"))
	defer srv.Close()

	client, err := upstream.New(srv.URL + "/api/v1/employee")
	require.NoError(t, err)
	svc, err := New(client)
	require.NoError(t, err)

	ctx := context.Background()
	req := models.CreateRequest{Name: "Pooja", Salary: 200, Age: 28, Title: "Manager", Email: "p@x.io"}
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, created)

	got, err := svc.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.Employee{
		ID: created.ID, Name: req.Name, Salary: req.Salary, Age: req.Age, Title: req.Title, Email: req.Email,
	}, got)

	names, err := svc.TopTenEarnerNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pooja"}, names)

	_, err = svc.DeleteByID(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.FetchByID(ctx, created.ID)
	assert.True(t, failure.Is(err, failure.KindNotFound))
}

func TestConcurrentAggregatesEachListUpstream(t *testing.T) {
	fakeUpstream := fake.New()
	fakeUpstream.Seed(25)
	srv := httptest.NewServer(fakeUpstream.Handler("/api/v1/employee"))
	defer srv.Close()

	client, err := upstream.New(srv.URL + "/api/v1/employee")
	require.NoError(t, err)
	svc, err := New(client)
	require.NoError(t, err)

	result := testutil.RunConcurrentCtx(context.Background(), 20, func(ctx context.Context, idx int) error {
		if idx%2 == 0 {
			_, err := svc.HighestSalary(ctx)
			return err
		}
		_, err := svc.TopTenEarnerNames(ctx)
		return err
	})

	assert.Equal(t, int32(20), result.Successes)
	assert.Equal(t, 20, fakeUpstream.ListCalls())
}
