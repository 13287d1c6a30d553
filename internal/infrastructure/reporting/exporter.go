package reporting

import (
	"context"
	"fmt"
	"io"
	"time"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/domain/analytics"
)

// Exporter implements consoleapp.ReportExporter
type Exporter struct {
	renderer PDFRenderer
	timeout  time.Duration
	now      func() time.Time
}

// NewExporter creates an exporter that prints through renderer
func NewExporter(renderer PDFRenderer, timeout time.Duration) *Exporter {
	return &Exporter{renderer: renderer, timeout: timeout, now: time.Now}
}

// Export renders report and writes the PDF to w
func (e *Exporter) Export(ctx context.Context, report *analytics.Report, w io.Writer) error {
	html, err := RenderHTML(report, e.now())
	if err != nil {
		return err
	}
	pdf, err := e.renderer.Render(ctx, &RenderRequest{
		HTML:    html,
		Title:   report.PropertyName,
		Timeout: e.timeout,
	})
	if err != nil {
		return err
	}
	if _, err := w.Write(pdf); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

var _ consoleapp.ReportExporter = (*Exporter)(nil)
