package jobs

import (
	"bytes"
	"fmt"
	"html/template"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Injection History Report</title>
  <style>
    body { font-family: Arial, sans-serif; padding: 40px; }
    h1 { color: #00A1FE; }
    table { width: 100%; border-collapse: collapse; margin-top: 20px; }
    th, td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
    th { background-color: #f5f5f5; }
    .header { margin-bottom: 30px; }
    .footer { margin-top: 30px; color: #666; font-size: 12px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Injection History Report</h1>
    <p>Generated: {{.Generated}}</p>
    <p>Patient: {{.Patient}}</p>
  </div>
  <table>
    <thead>
      <tr><th>Date</th><th>Time</th><th>Medication</th><th>Dosage</th><th>Site</th><th>Notes</th></tr>
    </thead>
    <tbody>
{{- range .Rows}}
      <tr><td>{{.Date}}</td><td>{{.Time}}</td><td>{{.Medication}}</td><td>{{.Dosage}} {{.Unit}}</td><td>{{.Site}}</td><td>{{if .Notes}}{{.Notes}}{{else}}-{{end}}</td></tr>
{{- end}}
    </tbody>
  </table>
  <div class="footer">
    <p>This report contains {{.Count}} injection record{{if ne .Count 1}}s{{end}}.</p>
  </div>
</body>
</html>
`))

func renderHTML(r Report) ([]byte, error) {
	rows := r.rows()
	data := struct {
		Generated string
		Patient   string
		Rows      []row
		Count     int
	}{
		Generated: r.GeneratedAt.In(r.Profile.Location()).Format("2006-01-02"),
		Patient:   r.Profile.DisplayName(),
		Rows:      rows,
		Count:     len(rows),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.Bytes(), nil
}
