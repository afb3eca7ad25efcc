package dto

import (
	"time"

	appintegration "github.com/erp/erpsync/internal/application/integration"
)

// ModelResultResponse reports one descriptor of a run
type ModelResultResponse struct {
	RemoteModel string `json:"remote_model"`
	LocalModel  string `json:"local_model"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
	Skipped     int    `json:"skipped"`
	Deferred    int    `json:"deferred"`
	Failed      int    `json:"failed"`
	Unresolved  int    `json:"unresolved"`
}

// SyncRunResponse reports one orchestrated run
type SyncRunResponse struct {
	CompanyID     string                `json:"company_id"`
	Direction     string                `json:"direction"`
	Status        string                `json:"status"`
	FailedRecords int                   `json:"failed_records"`
	StartedAt     time.Time             `json:"started_at"`
	FinishedAt    time.Time             `json:"finished_at"`
	DurationMS    int64                 `json:"duration_ms"`
	Models        []ModelResultResponse `json:"models"`
	Images        []ModelResultResponse `json:"images,omitempty"`
	TraceID       string                `json:"trace_id,omitempty"`
}

// NewSyncRunResponse converts a batch result
func NewSyncRunResponse(b *appintegration.BatchResult) SyncRunResponse {
	return SyncRunResponse{
		CompanyID:     b.CompanyID,
		Direction:     b.Direction.String(),
		Status:        b.Status(),
		FailedRecords: b.Failed(),
		StartedAt:     b.StartedAt,
		FinishedAt:    b.FinishedAt,
		DurationMS:    b.Duration().Milliseconds(),
		Models:        toModelResults(b.Models),
		Images:        toModelResults(b.Images),
		TraceID:       b.TraceID,
	}
}

func toModelResults(results []appintegration.ModelResult) []ModelResultResponse {
	if len(results) == 0 {
		return nil
	}
	out := make([]ModelResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, ModelResultResponse{
			RemoteModel: r.RemoteModel,
			LocalModel:  r.LocalModel,
			Created:     r.Created,
			Updated:     r.Updated,
			Skipped:     r.Skipped,
			Deferred:    r.Deferred,
			Failed:      r.Failed,
			Unresolved:  r.Unresolved,
		})
	}
	return out
}
