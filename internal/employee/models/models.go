package models

import (
	"encoding/json"

	"github.com/devkichauhan/reliaquest/pkg/validation"

	s "github.com/devkichauhan/reliaquest/pkg/string"
)

// Employee is the record owned by the upstream employee service. The id is
// assigned upstream and never changed here.
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"employee_name"`
	Salary int    `json:"employee_salary"`
	Age    int    `json:"employee_age"`
	Title  string `json:"employee_title"`
	Email  string `json:"employee_email"`
}

// RequiredFields lists the keys an upstream employee object must carry.
// Age, title and email are optional on the wire.
func (Employee) RequiredFields() []string {
	return []string{"id", "employee_name", "employee_salary"}
}

// CreateRequest is the inbound body for creating an employee. It is sent to
// upstream unchanged.
type CreateRequest struct {
	Name   string `json:"name" validate:"notblank"`
	Salary int    `json:"salary" validate:"min=0"`
	Age    int    `json:"age" validate:"min=16,max=75"`
	Title  string `json:"title" validate:"notblank"`
	Email  string `json:"email" validate:"required,email"`
}

func (r *CreateRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.Name, &r.Title, &r.Email)
}

func (r *CreateRequest) Validate() error {
	return validation.Validate(r)
}

// Envelope is the wrapper around every upstream response body. Data stays raw
// until the caller knows which shape to expect.
type Envelope struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Status string          `json:"status,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Response is the envelope written by the mock upstream for typed data.
type Response[T any] struct {
	Data   T      `json:"data"`
	Status string `json:"status"`
}

// ErrorResponse is the envelope written by the mock upstream for failures.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Envelope status values used by the upstream service.
const (
	StatusHandled = "Successfully processed request."
	StatusFailed  = "Failed to process request."
)

// DeleteConfirmation is returned after a successful delete.
const DeleteConfirmation = "Employee deleted successfully"
