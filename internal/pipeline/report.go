package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Signal is a noteworthy, non-fatal observation made during a step.
type Signal struct {
	Code     string `json:"code"`
	Step     string `json:"step"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type StepMetric struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Files      []string           `json:"files,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type ReportSummary struct {
	StepCount         int            `json:"step_count"`
	FailedSteps       int            `json:"failed_steps"`
	FilesWritten      []string       `json:"files_written"`
	SignalsBySeverity map[string]int `json:"signals_by_severity"`
}

// RunReport records what one sync run did, step by step.
type RunReport struct {
	Version     string        `json:"version"`
	Module      string        `json:"module"`
	GeneratedAt string        `json:"generated_at"`
	Steps       []StepMetric  `json:"steps"`
	Signals     []Signal      `json:"signals,omitempty"`
	Summary     ReportSummary `json:"summary"`
}

type stepHandle struct {
	name    string
	started time.Time
}

func NewRunReport(module string) *RunReport {
	return &RunReport{
		Version:     "v1",
		Module:      module,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Steps:       []StepMetric{},
		Signals:     []Signal{},
	}
}

func (r *RunReport) beginStep(name string) stepHandle {
	return stepHandle{name: strings.TrimSpace(name), started: time.Now().UTC()}
}

// endStep records the step and returns how long it took.
func (r *RunReport) endStep(h stepHandle, res stepResult, err error) time.Duration {
	finished := time.Now().UTC()
	elapsed := finished.Sub(h.started)
	if r == nil || h.name == "" {
		return elapsed
	}
	m := StepMetric{
		Name:       h.name,
		Status:     "ok",
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: elapsed.Milliseconds(),
		Counters:   cleanCounters(res.counters),
		Files:      res.files,
	}
	if err != nil {
		m.Status = "error"
		m.Error = err.Error()
	}
	r.Steps = append(r.Steps, m)
	return elapsed
}

func (r *RunReport) addSignal(code, step, severity, message string) {
	if r == nil {
		return
	}
	s := Signal{
		Code:     strings.TrimSpace(code),
		Step:     strings.TrimSpace(step),
		Severity: strings.ToLower(strings.TrimSpace(severity)),
		Message:  strings.TrimSpace(message),
	}
	if s.Code == "" || s.Step == "" || s.Severity == "" || s.Message == "" {
		return
	}
	r.Signals = append(r.Signals, s)
}

// FilesWritten lists every file a successful step rewrote, without repeats.
func (r *RunReport) FilesWritten() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range r.Steps {
		if s.Status != "ok" {
			continue
		}
		for _, f := range s.Files {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

func (r *RunReport) Finalize() {
	if r == nil {
		return
	}
	r.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	severityCount := map[string]int{
		"critical": 0,
		"warning":  0,
		"info":     0,
	}
	sort.SliceStable(r.Signals, func(i, j int) bool {
		return signalPriority(r.Signals[i].Severity) > signalPriority(r.Signals[j].Severity)
	})
	for _, s := range r.Signals {
		severityCount[s.Severity]++
	}
	failed := 0
	for _, s := range r.Steps {
		if s.Status != "ok" {
			failed++
		}
	}
	r.Summary = ReportSummary{
		StepCount:         len(r.Steps),
		FailedSteps:       failed,
		FilesWritten:      r.FilesWritten(),
		SignalsBySeverity: severityCount,
	}
}

func (r *RunReport) Save(path string) error {
	if r == nil {
		return nil
	}
	r.Finalize()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func cleanCounters(raw map[string]float64) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func signalPriority(severity string) int {
	switch severity {
	case "critical":
		return 3
	case "warning":
		return 2
	default:
		return 1
	}
}
