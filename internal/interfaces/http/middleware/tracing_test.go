package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/erp/erpsync/internal/infrastructure/telemetry"
	"github.com/erp/erpsync/tests/testutil"
)

func TestTracing_EnrichesServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Tracing(TracingConfig{ServiceName: "erpsync-test", Enabled: true}))
	engine.Use(func(c *gin.Context) { c.Set("request_id", "req-1"); c.Next() })
	engine.Use(SpanEnricher())
	engine.POST("/companies/:company/sync/inbound", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})

	w := testutil.Perform(engine, http.MethodPost, "/companies/acme/sync/inbound")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "acme", attrs[telemetry.SpanAttrCompany])
	assert.Equal(t, "req-1", attrs["request_id"])
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Tracing(TracingConfig{Enabled: false}), SpanEnricher(), Profiling(false))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, testutil.Perform(engine, http.MethodGet, "/x").Code)
}
