package reporting

import (
	"bytes"
	"html/template"
	"time"

	"github.com/britrip/hotelier/internal/domain/analytics"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": func(v, peak int) int {
		if peak <= 0 {
			return 0
		}
		return v * 100 / peak
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Report.PropertyName}} | Performance Report</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #0f172a; margin: 0; }
h1 { font-size: 22px; margin: 0 0 4px; }
.sub { color: #64748b; font-size: 11px; text-transform: uppercase; letter-spacing: .1em; }
.grid { display: flex; gap: 12px; margin: 24px 0; }
.kpi { flex: 1; border: 1px solid #e2e8f0; border-radius: 12px; padding: 12px; }
.kpi .label { font-size: 10px; color: #64748b; text-transform: uppercase; }
.kpi .value { font-size: 20px; font-weight: 700; }
.bars { display: flex; align-items: flex-end; gap: 8px; height: 120px; }
.bar { flex: 1; background: #003580; border-radius: 4px 4px 0 0; }
table { width: 100%; border-collapse: collapse; font-size: 12px; margin-top: 16px; }
th, td { text-align: left; padding: 6px; border-bottom: 1px solid #e2e8f0; }
</style>
</head>
<body>
<div class="sub">Britrip (hoteliers) · Generated {{.GeneratedAt}}</div>
<h1>{{.Report.PropertyName}}</h1>
<div class="grid">
  <div class="kpi"><div class="label">Total Views</div><div class="value">{{.Report.TotalViews}}</div></div>
  <div class="kpi"><div class="label">Conversion Rate</div><div class="value">{{.Report.ConversionRate.StringFixed 1}}%</div></div>
  <div class="kpi"><div class="label">Avg Daily Rate</div><div class="value">AED {{.Report.AvgDailyRate.StringFixed 0}}</div></div>
  <div class="kpi"><div class="label">Sync Health</div><div class="value">{{.Report.SyncHealth}}%</div></div>
</div>
<div class="sub">Weekly Trends · Market Position {{.Report.MarketPosition}} · Top Channel {{.Report.TopChannel}}</div>
<div class="bars">{{$peak := .Report.PeakTrend}}{{range .Report.WeeklyTrends}}<div class="bar" style="height: {{pct . $peak}}%"></div>{{end}}</div>
<table>
<tr><th>Region</th><th>Interest</th></tr>
{{range .Report.GeographicInterest}}<tr><td>{{.Region}}</td><td>{{.Value}}%</td></tr>
{{end}}</table>
<table>
<tr><th>Channel</th><th>Status</th><th>Last Sync</th><th>Health</th></tr>
{{range .Report.Channels}}<tr><td>{{.Name}}</td><td>{{.Status}}</td><td>{{.LastSync}}</td><td>{{.Health}}%</td></tr>
{{end}}</table>
</body>
</html>
`))

// RenderHTML renders the dashboard of report as a standalone HTML document
func RenderHTML(report *analytics.Report, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Report      *analytics.Report
		GeneratedAt string
	}{report, generatedAt.UTC().Format("02 Jan 2006 15:04 MST")})
	if err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to render report template", err)
	}
	return buf.String(), nil
}
