package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/devkichauhan/reliaquest/internal/employee/models"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Upstream setup steps
	ctx.Step(`^the employee service contains:$`, tc.upstreamContains)
	ctx.Step(`^the employee service contains (\d+) employees with salaries starting at (\d+)$`, tc.upstreamContainsGenerated)
	ctx.Step(`^the employee service is empty$`, tc.upstreamIsEmpty)
	ctx.Step(`^the employee service is down$`, tc.upstreamIsDown)
	ctx.Step(`^the employee service answers the next request with status (\d+)$`, tc.upstreamFailsNext)

	// Request steps
	ctx.Step(`^I GET "([^"]*)"$`, tc.GET)
	ctx.Step(`^I DELETE "([^"]*)"$`, tc.DELETE)
	ctx.Step(`^I POST to "([^"]*)" with body:$`, tc.postWithBody)
	ctx.Step(`^I save the created employee id$`, tc.saveCreatedID)
	ctx.Step(`^I GET the created employee$`, tc.getCreatedEmployee)
	ctx.Step(`^I DELETE the created employee$`, tc.deleteCreatedEmployee)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the response should be the JSON:$`, tc.responseShouldBeJSON)
	ctx.Step(`^the response should list (\d+) employees$`, tc.responseShouldListEmployees)
	ctx.Step(`^the employee service should hold (\d+) employees$`, tc.upstreamShouldHold)
}

func (tc *TestContext) upstreamContains(ctx context.Context, table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("table needs a header and at least one row")
	}
	header := table.Rows[0].Cells
	for _, row := range table.Rows[1:] {
		values := make(map[string]string, len(header))
		for i, cell := range row.Cells {
			values[header[i].Value] = cell.Value
		}

		salary, err := strconv.Atoi(values["salary"])
		if err != nil {
			return fmt.Errorf("salary %q: %w", values["salary"], err)
		}
		age, _ := strconv.Atoi(values["age"])
		tc.Upstream.Add(models.Employee{
			ID:     values["id"],
			Name:   values["name"],
			Salary: salary,
			Age:    age,
			Title:  values["title"],
			Email:  values["email"],
		})
	}
	return nil
}

func (tc *TestContext) upstreamContainsGenerated(ctx context.Context, count, startSalary int) error {
	for i := range count {
		salary := startSalary + i
		tc.Upstream.Add(models.Employee{
			Name:   fmt.Sprintf("Employee %d", salary),
			Salary: salary,
			Age:    30,
			Title:  "Engineer",
			Email:  fmt.Sprintf("employee%d@company.com", salary),
		})
	}
	return nil
}

func (tc *TestContext) upstreamIsEmpty(ctx context.Context) error {
	tc.Upstream.Reset()
	return nil
}

func (tc *TestContext) upstreamIsDown(ctx context.Context) error {
	tc.StopUpstream()
	return nil
}

func (tc *TestContext) upstreamFailsNext(ctx context.Context, status int) error {
	tc.Upstream.FailNext(status)
	return nil
}

func (tc *TestContext) postWithBody(ctx context.Context, path string, body *godog.DocString) error {
	return tc.POST(path, body.Content)
}

func (tc *TestContext) saveCreatedID(ctx context.Context) error {
	id, err := tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s, ok := id.(string)
	if !ok || s == "" {
		return fmt.Errorf("created employee has no id: %v", id)
	}
	tc.CreatedID = s
	return nil
}

func (tc *TestContext) getCreatedEmployee(ctx context.Context) error {
	return tc.GET(upstreamPrefix + "/" + tc.CreatedID)
}

func (tc *TestContext) deleteCreatedEmployee(ctx context.Context) error {
	return tc.DELETE(upstreamPrefix + "/" + tc.CreatedID)
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if got := tc.GetLastResponseStatus(); got != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expectedStatus, got, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseShouldContain(ctx context.Context, text string) error {
	if !tc.ResponseContains(text) {
		return fmt.Errorf("response does not contain %q\nResponse: %s", text, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	actualValue, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

func (tc *TestContext) responseShouldBeJSON(ctx context.Context, expected *godog.DocString) error {
	var want, got any
	if err := json.Unmarshal([]byte(expected.Content), &want); err != nil {
		return fmt.Errorf("expected JSON is invalid: %w", err)
	}
	if err := json.Unmarshal(tc.LastResponseBody, &got); err != nil {
		return fmt.Errorf("response is not JSON: %w\nResponse: %s", err, tc.LastResponseBody)
	}
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("expected %s but got %s", expected.Content, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseShouldListEmployees(ctx context.Context, count int) error {
	var employees []models.Employee
	if err := json.Unmarshal(tc.LastResponseBody, &employees); err != nil {
		return fmt.Errorf("response is not an employee list: %w", err)
	}
	if len(employees) != count {
		return fmt.Errorf("expected %d employees but got %d", count, len(employees))
	}
	return nil
}

func (tc *TestContext) upstreamShouldHold(ctx context.Context, count int) error {
	if got := tc.Upstream.Len(); got != count {
		return fmt.Errorf("expected employee service to hold %d employees but it holds %d", count, got)
	}
	return nil
}
