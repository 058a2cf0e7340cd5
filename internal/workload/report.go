package workload

import (
	"fmt"
	"io"
	"time"
)

// Run is the outcome of one workload run at a given cache capacity.
type Run struct {
	Capacity   int
	Result     *Result
	Hits       int64
	Misses     int64
	Evictions  int64
	StoreReads int64
}

// HitRate returns hits / (hits + misses), or 0 when nothing was looked up.
func (r Run) HitRate() float64 {
	total := r.Hits + r.Misses
	if total == 0 {
		return 0
	}
	return float64(r.Hits) / float64(total)
}

// MarkdownReport writes workload results in Markdown format.
type MarkdownReport struct {
	w   io.Writer
	now func() time.Time
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w, now: time.Now}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", r.now().Format(time.RFC3339))
}

// WriteWorkload describes the workload that produced the runs.
func (r *MarkdownReport) WriteWorkload(cfg Config) {
	fmt.Fprintln(r.w, "## Workload")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Users:** %d\n", cfg.Tenants)
	fmt.Fprintf(r.w, "- **Records per user:** %d\n", cfg.RecordsPerTenant)
	fmt.Fprintf(r.w, "- **Operations:** %d\n", cfg.Ops)
	fmt.Fprintf(r.w, "- **Write ratio:** %.2f\n", cfg.WriteRatio)
	fmt.Fprintf(r.w, "- **Zipf skew:** %.2f\n", cfg.Skew)
	if cfg.SignOutEvery > 0 {
		fmt.Fprintf(r.w, "- **Sign-out:** every %d operations\n", cfg.SignOutEvery)
	}
	fmt.Fprintf(r.w, "- **Seed:** %d\n", cfg.Seed)
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes one row per run.
func (r *MarkdownReport) WriteSummaryTable(runs []Run) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Capacity | Hit Rate | Evictions | Store Reads | p50 (µs) | p99 (µs) | Errors |")
	fmt.Fprintln(r.w, "|----------|----------|-----------|-------------|----------|----------|--------|")

	for _, run := range runs {
		var lat Summary
		var errs int
		if run.Result != nil {
			lat = run.Result.Latency
			errs = run.Result.Errors
		}
		fmt.Fprintf(r.w, "| %d | %.1f%% | %d | %d | %.0f | %.0f | %d |\n",
			run.Capacity, run.HitRate()*100, run.Evictions, run.StoreReads,
			lat.P50, lat.P99, errs)
	}
	fmt.Fprintln(r.w)
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by pillcache simulate*")
}
