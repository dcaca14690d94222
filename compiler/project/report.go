package project

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

type UnitReport struct {
	File         string   `json:"file"`
	Class        string   `json:"class,omitempty"`
	Output       string   `json:"output,omitempty"`
	Functions    []string `json:"functions,omitempty"`
	Statics      []string `json:"statics,omitempty"`
	Fields       []string `json:"fields,omitempty"`
	Instructions int      `json:"instructions"`
	DurationMs   float64  `json:"duration_ms"`
	Error        string   `json:"error,omitempty"`
}

type Report struct {
	Started time.Time    `json:"started"`
	Units   []UnitReport `json:"units"`
	Failed  int          `json:"failed"`
}

func NewReport(started time.Time, results []UnitResult) Report {
	report := Report{Started: started, Units: make([]UnitReport, 0, len(results))}
	for _, result := range results {
		unit := UnitReport{
			File:         result.File,
			Class:        result.Class,
			Output:       result.Output,
			Functions:    result.Functions,
			Statics:      result.Statics,
			Fields:       result.Fields,
			Instructions: result.Instructions,
			DurationMs:   float64(result.Duration) / float64(time.Millisecond),
		}
		if result.Err != nil {
			unit.Error = result.Err.Error()
			unit.Output = ""
			report.Failed++
		}
		report.Units = append(report.Units, unit)
	}
	return report
}

func (r Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (r Report) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, bytes.NewReader(append(data, '\n')))
}
