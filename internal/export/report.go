package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/i474232898/weather-flatten/internal/weather"
)

// LocationStatus is the JSON view of one location's outcome.
type LocationStatus struct {
	City   string         `json:"city"`
	Status weather.Status `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// ReportDocument is the JSON view of a batch run.
type ReportDocument struct {
	RunID      string           `json:"runId"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Columns    []string         `json:"columns"`
	Rows       []weather.Record `json:"rows"`
	Results    []LocationStatus `json:"results"`
}

// NewReportDocument builds the JSON view of report.
func NewReportDocument(report *weather.Report) ReportDocument {
	doc := ReportDocument{
		RunID:      report.RunID.String(),
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Columns:    report.Table.Columns(),
		Rows:       report.Table.Rows(),
		Results:    make([]LocationStatus, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		ls := LocationStatus{City: res.Location, Status: res.Status}
		if res.Err != nil {
			ls.Error = res.Err.Error()
		}
		doc.Results = append(doc.Results, ls)
	}
	return doc
}

// WriteJSON writes the JSON view of report to w.
func WriteJSON(w io.Writer, report *weather.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReportDocument(report))
}
