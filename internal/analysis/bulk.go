package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vendorwatch/internal/database"
	"vendorwatch/internal/model"
)

// Target is one entry in a bulk scan.
type Target struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// ProgressEvent reports bulk-scan progress after each target, success
// or failure.
type ProgressEvent struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Domain  string `json:"domain,omitempty"`
	Done    bool   `json:"done,omitempty"`
}

// Broadcaster delivers progress events to connected clients.
type Broadcaster interface {
	Broadcast(userID int64, ev ProgressEvent)
}

// VendorAnalyzer is the single-target pipeline the bulk runner drives.
type VendorAnalyzer interface {
	Analyze(ctx context.Context, domain string, scanType model.ScanType, settings model.Settings) (*model.AnalysisResult, []model.Source, error)
}

// BulkRunner scans a target list in strict sequence, continuing past
// per-target failures. Sequential on purpose: backend rate limits, and
// a progress counter that only moves forward.
type BulkRunner struct {
	analyzer    VendorAnalyzer
	db          *database.DB
	broadcaster Broadcaster
}

func NewBulkRunner(analyzer VendorAnalyzer, db *database.DB, broadcaster Broadcaster) *BulkRunner {
	return &BulkRunner{analyzer: analyzer, db: db, broadcaster: broadcaster}
}

// Run folds over the targets accumulating saved reports and an error
// log. Every successfully analyzed target is persisted immediately, so
// partial results survive later failures. If any target failed, Run
// returns the saved reports together with one aggregate error naming
// the count and every failure.
func (r *BulkRunner) Run(ctx context.Context, userID int64, targets []Target, scanType model.ScanType, settings model.Settings) ([]model.Report, error) {
	var saved []model.Report
	var errLog []string
	total := len(targets)

	for i, target := range targets {
		if target.Domain == "" {
			r.progress(userID, i+1, total, target.Domain)
			continue
		}

		slog.Info("bulk analysis", "domain", target.Domain, "index", i+1, "total", total)

		result, sources, err := r.analyzer.Analyze(ctx, target.Domain, scanType, settings)
		if err != nil {
			errLog = append(errLog, fmt.Sprintf("Failed to analyze %s: %v", target.Domain, err))
			r.progress(userID, i+1, total, target.Domain)
			continue
		}

		vendorName := target.Name
		if vendorName == "" {
			vendorName = result.VendorName
		}
		if vendorName == "" {
			vendorName = target.Domain
		}

		report := &model.Report{
			UserID:     userID,
			Domain:     target.Domain,
			VendorName: vendorName,
			Result:     *result,
			Sources:    sources,
			Timestamp:  time.Now().UnixMilli(),
			ScanType:   scanType,
		}
		stored, err := r.db.SaveReport(report)
		if err != nil {
			errLog = append(errLog, fmt.Sprintf("Failed to analyze %s: %v", target.Domain, err))
			r.progress(userID, i+1, total, target.Domain)
			continue
		}
		saved = append(saved, *stored)
		r.progress(userID, i+1, total, target.Domain)
	}

	r.broadcast(userID, ProgressEvent{Current: total, Total: total, Done: true})

	if len(errLog) > 0 {
		return saved, fmt.Errorf("Bulk analysis completed with %d error(s).\n- %s", len(errLog), strings.Join(errLog, "\n- "))
	}
	return saved, nil
}

func (r *BulkRunner) progress(userID int64, current, total int, domain string) {
	r.broadcast(userID, ProgressEvent{Current: current, Total: total, Domain: domain})
}

func (r *BulkRunner) broadcast(userID int64, ev ProgressEvent) {
	if r.broadcaster != nil {
		r.broadcaster.Broadcast(userID, ev)
	}
}
