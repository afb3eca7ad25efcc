package integration

import (
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
)

// ModelResult counts what one engine pass did for one descriptor
type ModelResult struct {
	RemoteModel string `json:"remote_model"`
	LocalModel  string `json:"local_model"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
	// Skipped counts records left untouched (unchanged images, empty image values)
	Skipped int `json:"skipped"`
	// Deferred counts records postponed because of unresolved references
	Deferred int `json:"deferred"`
	Failed   int `json:"failed"`
	// Unresolved counts relation targets without a ledger entry
	Unresolved int `json:"unresolved"`
}

func newModelResult(p *Plan) ModelResult {
	return ModelResult{RemoteModel: p.Mapping.RemoteModel, LocalModel: p.Mapping.LocalModel}
}

// Processed returns the number of records that were written
func (r ModelResult) Processed() int {
	return r.Created + r.Updated
}

// BatchResult aggregates the results of one orchestrated run
type BatchResult struct {
	CompanyID  string                    `json:"company_id"`
	Direction  integration.SyncDirection `json:"direction"`
	Models     []ModelResult             `json:"models"`
	Images     []ModelResult             `json:"images,omitempty"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	// TraceID identifies the run trace; empty when tracing is disabled
	TraceID string `json:"trace_id,omitempty"`
}

// Failed returns the total number of failed records
func (b *BatchResult) Failed() int {
	total := 0
	for _, r := range b.Models {
		total += r.Failed
	}
	for _, r := range b.Images {
		total += r.Failed
	}
	return total
}

// Duration returns the wall time of the run
func (b *BatchResult) Duration() time.Duration {
	return b.FinishedAt.Sub(b.StartedAt)
}

// Status summarizes the run outcome: SUCCESS, PARTIAL when some records failed
func (b *BatchResult) Status() string {
	if b.Failed() > 0 {
		return "PARTIAL"
	}
	return "SUCCESS"
}
