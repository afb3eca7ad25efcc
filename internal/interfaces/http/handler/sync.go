package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	appintegration "github.com/erp/erpsync/internal/application/integration"
	"github.com/erp/erpsync/internal/interfaces/http/dto"
)

// SyncRunner triggers sync runs for one company
type SyncRunner interface {
	SyncInbound(ctx context.Context, ref string) (*appintegration.BatchResult, error)
	SyncOutbound(ctx context.Context, ref string) (*appintegration.BatchResult, error)
}

// SyncHandler exposes manual sync triggers
type SyncHandler struct {
	BaseHandler
	service SyncRunner
}

// NewSyncHandler creates a SyncHandler
func NewSyncHandler(service SyncRunner) *SyncHandler {
	return &SyncHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	companies := rg.Group("/companies/:company/sync")
	companies.POST("/inbound", h.SyncInbound)
	companies.POST("/outbound", h.SyncOutbound)
}

// SyncInbound pulls remote records for the company.
// POST /api/v1/companies/:company/sync/inbound
// The company is referenced by id or slug.
func (h *SyncHandler) SyncInbound(c *gin.Context) {
	h.run(c, h.service.SyncInbound)
}

// SyncOutbound pushes unlinked local records for the company.
// POST /api/v1/companies/:company/sync/outbound
func (h *SyncHandler) SyncOutbound(c *gin.Context) {
	h.run(c, h.service.SyncOutbound)
}

func (h *SyncHandler) run(c *gin.Context, fn func(context.Context, string) (*appintegration.BatchResult, error)) {
	ref := strings.TrimSpace(c.Param("company"))
	if ref == "" {
		h.BadRequest(c, "company is required")
		return
	}

	result, err := fn(c.Request.Context(), ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSyncRunResponse(result))
}
