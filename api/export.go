package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/warp/leave-quota/export"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// ExportDetail downloads the per-employee workbook for ?year=.
func (h *Handler) ExportDetail(w http.ResponseWriter, r *http.Request) {
	year := h.yearParam(r)

	details, err := h.Aggregator.Detail(r.Context(), year)
	if err != nil {
		h.fail(w, r, err, "Export failed")
		return
	}

	f, err := export.DetailWorkbook(year, details)
	if err != nil {
		h.fail(w, r, err, "Export failed")
		return
	}
	defer f.Close()

	filename := export.DetailFilename(year, h.Now())
	if h.ExportDir != "" {
		if err := archive(f, h.ExportDir, filename); err != nil {
			h.fail(w, r, err, "Export failed")
			return
		}
	}

	h.sendWorkbook(w, r, f, "detail", filename)
}

// ExportSummary downloads the one-sheet summary workbook for ?year=.
func (h *Handler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	year := h.yearParam(r)

	summaries, err := h.Aggregator.Summarize(r.Context(), year)
	if err != nil {
		h.fail(w, r, err, "Export failed")
		return
	}

	f, err := export.SummaryWorkbook(year, summaries)
	if err != nil {
		h.fail(w, r, err, "Export failed")
		return
	}
	defer f.Close()

	h.sendWorkbook(w, r, f, "summary", export.SummaryFilename(year))
}

func (h *Handler) sendWorkbook(w http.ResponseWriter, r *http.Request, f *excelize.File, kind, filename string) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		h.fail(w, r, err, "Export failed")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	h.Metrics.exported(kind)
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.WithError(err).WithField("file", filename).Warn("export download interrupted")
	}
}

func archive(f *excelize.File, dir, filename string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := f.SaveAs(filepath.Join(dir, filename)); err != nil {
		return fmt.Errorf("failed to archive export: %w", err)
	}
	return nil
}
