package dto

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erp/erpsync/internal/domain/integration"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"company not found", integration.ErrCompanyNotFound, ErrCodeNotFound, http.StatusNotFound},
		{"sync in progress", fmt.Errorf("%w: key", integration.ErrSyncInProgress), ErrCodeSyncInProgress, http.StatusConflict},
		{"connection", fmt.Errorf("login: %w", integration.ErrConnection), ErrCodeRemoteUnavailable, http.StatusBadGateway},
		{"authentication", integration.ErrAuthentication, ErrCodeRemoteAuth, http.StatusBadGateway},
		{"auth wrapped with connection", fmt.Errorf("%w: %w", integration.ErrConnection, integration.ErrAuthentication), ErrCodeRemoteAuth, http.StatusBadGateway},
		{"mapping", fmt.Errorf("inbound x: %w", integration.ErrMappingConfig), ErrCodeMappingConfig, http.StatusInternalServerError},
		{"timeout", context.DeadlineExceeded, ErrCodeTimeout, http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := ErrorCode(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, GetHTTPStatus(code))
		})
	}
}

func TestGetHTTPStatus_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("ERR_WHATEVER"))
}
