// Package runner scores a list of labels in one go and records the results.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/brix-meter/internal/scorer"
	"github.com/giantswarm/brix-meter/internal/session"
)

// ResultSetFile is the name of the JSON file written for every run.
const ResultSetFile = "resultset.json"

// Scorer scores a single input.
type Scorer interface {
	Score(ctx context.Context, in session.ScoreInput) scorer.Result
}

// ProgressFunc is called before each label is scored.
type ProgressFunc func(label string, index, total int)

// LabelResult is the outcome for one label.
type LabelResult struct {
	Label    string        `json:"label"`
	Result   scorer.Result `json:"result"`
	Duration time.Duration `json:"duration"`
}

// Run holds the results of a batch run.
type Run struct {
	ID        string        `json:"id"`
	Template  string        `json:"template"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Results   []LabelResult `json:"results"`
	Summary   Summary       `json:"summary"`
	Path      string        `json:"-"`
}

// Summary counts results per tier.
type Summary struct {
	Total  int                 `json:"total"`
	Scored int                 `json:"scored"`
	Failed int                 `json:"failed"`
	Tiers  map[scorer.Tier]int `json:"tiers"`
}

// Runner scores labels sequentially.
type Runner struct {
	scorer     Scorer
	connection scorer.Connection
	outputDir  string
	progress   ProgressFunc
}

// NewRunner creates a new Runner. Results are written below outputDir; an
// empty outputDir disables writing.
func NewRunner(s Scorer, conn scorer.Connection, outputDir string) *Runner {
	return &Runner{
		scorer:     s,
		connection: conn,
		outputDir:  outputDir,
	}
}

// SetProgressFunc sets the progress callback.
func (r *Runner) SetProgressFunc(fn ProgressFunc) {
	r.progress = fn
}

// Run scores every label with the named template. A failed label does not
// stop the run; cancellation of ctx does.
func (r *Runner) Run(ctx context.Context, templateName string, labels []string) (*Run, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to score")
	}

	timestamp := time.Now()
	run := &Run{
		ID:        newRunID(templateName, timestamp),
		Template:  templateName,
		Timestamp: timestamp,
		Results:   make([]LabelResult, 0, len(labels)),
	}

	for i, label := range labels {
		if err := ctx.Err(); err != nil {
			slog.Warn("batch run cancelled", "completed", i, "total", len(labels))
			break
		}

		if r.progress != nil {
			r.progress(label, i+1, len(labels))
		}

		start := time.Now()
		result := r.scorer.Score(ctx, session.ScoreInput{
			Text:         label,
			TemplateName: templateName,
			Connection:   r.connection,
		})
		if !result.OK() {
			slog.Warn("label not scored", "label", label, "error", result.Err)
		}

		run.Results = append(run.Results, LabelResult{
			Label:    label,
			Result:   result,
			Duration: time.Since(start),
		})
	}

	run.Duration = time.Since(timestamp)
	run.Summary = summarize(run.Results)

	if r.outputDir != "" {
		path, err := writeRun(r.outputDir, run)
		if err != nil {
			return nil, fmt.Errorf("failed to write run results: %w", err)
		}
		run.Path = path
	}

	slog.Info("batch run complete",
		"run_id", run.ID,
		"scored", run.Summary.Scored,
		"failed", run.Summary.Failed,
	)
	return run, nil
}

// newRunID names a run after its template and start time. The random suffix
// keeps concurrent runs of the same template apart.
func newRunID(templateName string, t time.Time) string {
	name := sanitizeIDPart(templateName)
	if name == "" {
		name = "default"
	}
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("brix_%s_%s_%s", name, t.Format("20060102-150405"), suffix)
}

// sanitizeIDPart keeps letters, digits, dots, dashes and underscores so the
// ID is a single safe path element.
func sanitizeIDPart(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

func summarize(results []LabelResult) Summary {
	s := Summary{
		Total: len(results),
		Tiers: make(map[scorer.Tier]int),
	}
	for _, r := range results {
		if r.Result.OK() {
			s.Scored++
		} else {
			s.Failed++
		}
		s.Tiers[r.Result.Tier]++
	}
	return s
}

func writeRun(outputDir string, run *Run) (string, error) {
	outputPath := filepath.Join(outputDir, run.ID)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "    ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(outputPath, ResultSetFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ParseLabels splits text into labels, one per line. Blank lines and lines
// starting with # are skipped; surrounding whitespace is trimmed.
func ParseLabels(text string) []string {
	var labels []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	return labels
}

// ReadLabels reads labels from a file using ParseLabels.
func ReadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}
	return ParseLabels(string(data)), nil
}
