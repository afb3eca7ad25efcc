package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appintegration "github.com/erp/erpsync/internal/application/integration"
	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/logger"
	"github.com/erp/erpsync/internal/interfaces/http/dto"
	"github.com/erp/erpsync/tests/testutil"
)

type fakeSyncRunner struct {
	gotRef string
	result *appintegration.BatchResult
	err    error
}

func (f *fakeSyncRunner) SyncInbound(_ context.Context, ref string) (*appintegration.BatchResult, error) {
	f.gotRef = ref
	return f.result, f.err
}

func (f *fakeSyncRunner) SyncOutbound(_ context.Context, ref string) (*appintegration.BatchResult, error) {
	f.gotRef = ref
	return f.result, f.err
}

func newSyncEngine(runner SyncRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(logger.GinMiddleware(zap.NewNop()))
	NewSyncHandler(runner).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestSyncHandler_Success(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	runner := &fakeSyncRunner{result: &appintegration.BatchResult{
		CompanyID: "c1",
		Direction: integration.SyncDirectionInbound,
		Models: []appintegration.ModelResult{
			{RemoteModel: "product.product", LocalModel: "product", Created: 2, Failed: 1},
		},
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		TraceID:    "4bf92f3577b34da6a3ce929d0e0e4736",
	}}
	engine := newSyncEngine(runner)

	w := testutil.Perform(engine, http.MethodPost, "/api/v1/companies/acme/sync/inbound")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acme", runner.gotRef)
	testutil.AssertSuccessResponse(t, w)

	data := testutil.JSONBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "INBOUND", data["direction"])
	assert.Equal(t, "PARTIAL", data["status"])
	assert.Equal(t, float64(1), data["failed_records"])
	assert.Equal(t, float64(1500), data["duration_ms"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", data["trace_id"])
	models := data["models"].([]any)
	require.Len(t, models, 1)
	assert.Equal(t, float64(2), models[0].(map[string]any)["created"])
}

func TestSyncHandler_Outbound(t *testing.T) {
	runner := &fakeSyncRunner{result: &appintegration.BatchResult{Direction: integration.SyncDirectionOutbound}}
	engine := newSyncEngine(runner)

	w := testutil.Perform(engine, http.MethodPost, "/api/v1/companies/acme/sync/outbound")

	assert.Equal(t, http.StatusOK, w.Code)
	data := testutil.JSONBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "OUTBOUND", data["direction"])
	assert.Equal(t, "SUCCESS", data["status"])
	assert.NotContains(t, data, "trace_id", "omitted when tracing is disabled")
}

func TestSyncHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown company", integration.ErrCompanyNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"run in progress", fmt.Errorf("%w: k", integration.ErrSyncInProgress), http.StatusConflict, dto.ErrCodeSyncInProgress},
		{"remote down", integration.ErrConnection, http.StatusBadGateway, dto.ErrCodeRemoteUnavailable},
		{"bad credentials", integration.ErrAuthentication, http.StatusBadGateway, dto.ErrCodeRemoteAuth},
		{"bad mapping", integration.ErrMappingConfig, http.StatusInternalServerError, dto.ErrCodeMappingConfig},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newSyncEngine(&fakeSyncRunner{err: tt.err})

			w := testutil.Perform(engine, http.MethodPost, "/api/v1/companies/acme/sync/inbound")

			assert.Equal(t, tt.status, w.Code)
			testutil.AssertErrorResponse(t, w, tt.code)
			errInfo := testutil.JSONBody(t, w)["error"].(map[string]any)
			assert.NotEmpty(t, errInfo["request_id"])
		})
	}
}

func TestSyncHandler_InternalErrorMessageHidden(t *testing.T) {
	engine := newSyncEngine(&fakeSyncRunner{err: errors.New("secret dsn in message")})

	w := testutil.Perform(engine, http.MethodPost, "/api/v1/companies/acme/sync/inbound")

	assert.NotContains(t, w.Body.String(), "secret dsn")
}
