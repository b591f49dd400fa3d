package handler

import (
	"errors"
	"net/http"

	"github.com/devkichauhan/reliaquest/internal/employee/failure"
	"github.com/devkichauhan/reliaquest/pkg/platform/httputil"
)

// Response codes for upstream failures that have no domain error equivalent.
const (
	codeRateLimited         = "rate_limited"
	codeUpstreamUnavailable = "upstream_unavailable"
	codeBadGateway          = "bad_gateway"
)

// WriteFailure translates upstream failures into HTTP responses. Other
// errors go through httputil.WriteError.
func WriteFailure(w http.ResponseWriter, err error) {
	var fe *failure.Error
	if !errors.As(err, &fe) {
		httputil.WriteError(w, err)
		return
	}
	status, code, desc := FailureResponse(fe.Kind)
	httputil.WriteErrorCode(w, status, code, desc)
}

// FailureResponse maps a failure kind to status, error code and description.
func FailureResponse(kind failure.Kind) (status int, code, description string) {
	switch kind {
	case failure.KindRateLimited:
		return http.StatusTooManyRequests, codeRateLimited, "Rate limit Applied: Too Many Request"
	case failure.KindRejected:
		return http.StatusBadRequest, "bad_request", "Invalid request data"
	case failure.KindNotFound:
		return http.StatusNotFound, "not_found", "Requested resource not found"
	case failure.KindFault:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	case failure.KindUnavailable:
		return http.StatusServiceUnavailable, codeUpstreamUnavailable, "Employee service unavailable"
	case failure.KindDecode:
		return http.StatusBadGateway, codeBadGateway, "Unexpected response from employee service"
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}
