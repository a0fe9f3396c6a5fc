package arcade

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	StatusBuilt  = "built"
	StatusFailed = "failed"
)

// Report is the JSON record of one run, kept next to the clones.
type Report struct {
	data []byte
	err  error
}

func NewReport(started time.Time) *Report {
	r := &Report{data: []byte(`{"games":[]}`)}
	r.set("started", started.Format(time.RFC3339))
	return r
}

func (r *Report) set(path string, value any) {
	if r.err != nil {
		return
	}
	r.data, r.err = sjson.SetBytes(r.data, path, value)
}

func (r *Report) AddResult(res BuildResult) {
	game := map[string]any{
		"name":        res.Game,
		"language":    string(res.Language),
		"status":      StatusBuilt,
		"cloned":      res.Cloned,
		"duration_ms": res.Duration.Milliseconds(),
	}
	if res.Binary != "" {
		game["binary"] = res.Binary
	}
	if res.Err != nil {
		game["status"] = StatusFailed
		game["error"] = res.Err.Error()
	}
	r.set("games.-1", game)
}

func (r *Report) SetArchive(path string) {
	r.set("archive", path)
}

func (r *Report) Finish(at time.Time) {
	r.set("finished", at.Format(time.RFC3339))
}

func (r *Report) Bytes() ([]byte, error) {
	return r.data, r.err
}

func (r *Report) WriteFile(path string) error {
	b, err := r.Bytes()
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ReportGame is one game line read back from a report.
type ReportGame struct {
	Name     string
	Language string
	Status   string
	Binary   string
	Cloned   bool
	Duration time.Duration
	Error    string
}

// ReportSummary is a report read back from disk.
type ReportSummary struct {
	Started  string
	Finished string
	Archive  string
	Games    []ReportGame
}

func ReadReport(path string) (*ReportSummary, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return ParseReport(b)
}

func ParseReport(b []byte) (*ReportSummary, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("report is not valid JSON")
	}
	doc := gjson.ParseBytes(b)
	s := &ReportSummary{
		Started:  doc.Get("started").String(),
		Finished: doc.Get("finished").String(),
		Archive:  doc.Get("archive").String(),
	}
	doc.Get("games").ForEach(func(_, g gjson.Result) bool {
		s.Games = append(s.Games, ReportGame{
			Name:     g.Get("name").String(),
			Language: g.Get("language").String(),
			Status:   g.Get("status").String(),
			Binary:   g.Get("binary").String(),
			Cloned:   g.Get("cloned").Bool(),
			Duration: time.Duration(g.Get("duration_ms").Int()) * time.Millisecond,
			Error:    g.Get("error").String(),
		})
		return true
	})
	return s, nil
}
