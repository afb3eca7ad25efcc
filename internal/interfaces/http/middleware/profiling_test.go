package middleware

import (
	"net/http"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/erp/erpsync/internal/infrastructure/telemetry"
	"github.com/erp/erpsync/tests/testutil"
)

func TestProfiling_LabelsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		enabled   bool
		path      string
		wantRoute string
	}{
		{"sync route labelled", true, "/companies/acme/sync/inbound", "/companies/:company/sync/inbound"},
		{"health check skipped", true, "/health", ""},
		{"disabled", false, "/companies/acme/sync/inbound", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var route string
			engine := gin.New()
			engine.Use(Profiling(tt.enabled))
			handler := func(c *gin.Context) {
				route, _ = pprof.Label(c.Request.Context(), telemetry.ProfilingLabelRoute)
				c.Status(http.StatusOK)
			}
			engine.POST("/companies/:company/sync/inbound", handler)
			engine.POST("/health", handler)

			w := testutil.Perform(engine, http.MethodPost, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantRoute, route)
		})
	}
}
