package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/erpsync/internal/domain/integration"
)

// Error codes
const (
	ErrCodeInternal          = "ERR_INTERNAL"
	ErrCodeBadRequest        = "ERR_BAD_REQUEST"
	ErrCodeNotFound          = "ERR_NOT_FOUND"
	ErrCodeSyncInProgress    = "ERR_SYNC_IN_PROGRESS"
	ErrCodeRemoteUnavailable = "ERR_REMOTE_UNAVAILABLE"
	ErrCodeRemoteAuth        = "ERR_REMOTE_AUTHENTICATION"
	ErrCodeMappingConfig     = "ERR_MAPPING_CONFIG"
	ErrCodeTimeout           = "ERR_TIMEOUT"
)

// errorCodeToHTTPStatus maps error codes to HTTP status codes
var errorCodeToHTTPStatus = map[string]int{
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeSyncInProgress:    http.StatusConflict,
	ErrCodeRemoteUnavailable: http.StatusBadGateway,
	ErrCodeRemoteAuth:        http.StatusBadGateway,
	ErrCodeMappingConfig:     http.StatusInternalServerError,
	ErrCodeTimeout:           http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorCode classifies an error returned by the sync service.
// Authentication is checked before connection because an auth failure is
// also reported as a connection error by some transports.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, integration.ErrCompanyNotFound):
		return ErrCodeNotFound
	case errors.Is(err, integration.ErrSyncInProgress):
		return ErrCodeSyncInProgress
	case errors.Is(err, integration.ErrAuthentication):
		return ErrCodeRemoteAuth
	case errors.Is(err, integration.ErrConnection):
		return ErrCodeRemoteUnavailable
	case errors.Is(err, integration.ErrMappingConfig):
		return ErrCodeMappingConfig
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	default:
		return ErrCodeInternal
	}
}
