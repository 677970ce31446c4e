// Package pipeline models the lead lifecycle: an ordered list of configured
// stages that leads move through.  The first stage is where web-submitted
// leads enter; the last is treated as "closed" when computing conversion.
// Any stage may move to any other stage directly; there is no adjacency rule.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Fallback keys used when the configured list is empty.
const (
	FallbackEntryStage  = "lead"
	FallbackClosedStage = "closed"
)

var (
	// ErrStageRequired is returned by Transition when no stage was supplied.
	ErrStageRequired = errors.New("stage is required")
	// ErrUnknownStage is returned in strict mode for keys not in the pipeline.
	ErrUnknownStage = errors.New("unknown pipeline stage")
)

// Stage is one column of the pipeline board.
type Stage struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Pipeline is the configured, ordered stage list.  It is immutable after
// construction and safe for concurrent use.
type Pipeline struct {
	stages []Stage
	index  map[string]int
	strict bool
}

// New builds a Pipeline.  When strict is true, stage values outside the
// configured keys are rejected; otherwise any non-empty string is accepted.
func New(stages []Stage, strict bool) *Pipeline {
	p := &Pipeline{stages: append([]Stage(nil), stages...), index: make(map[string]int, len(stages)), strict: strict}
	for i, s := range p.stages {
		p.index[s.Key] = i
	}
	return p
}

// Parse reads a comma-separated list of key:Label pairs.  A missing label
// defaults to the key.  Duplicate or empty keys are an error.
func Parse(list string) ([]Stage, error) {
	var out []Stage
	seen := map[string]bool{}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, label, _ := strings.Cut(part, ":")
		key = strings.TrimSpace(key)
		label = strings.TrimSpace(label)
		if key == "" {
			return nil, fmt.Errorf("pipeline: empty stage key in %q", part)
		}
		if seen[key] {
			return nil, fmt.Errorf("pipeline: duplicate stage key %q", key)
		}
		seen[key] = true
		if label == "" {
			label = key
		}
		out = append(out, Stage{Key: key, Label: label})
	}
	return out, nil
}

// Stages returns a copy of the configured stages in order.
func (p *Pipeline) Stages() []Stage { return append([]Stage(nil), p.stages...) }

// Strict reports whether stage membership is enforced.
func (p *Pipeline) Strict() bool { return p.strict }

// EntryStage is the stage new web leads start in.
func (p *Pipeline) EntryStage() string {
	if len(p.stages) == 0 {
		return FallbackEntryStage
	}
	return p.stages[0].Key
}

// ClosedStage is the stage counted as converted on the dashboard.
func (p *Pipeline) ClosedStage() string {
	if len(p.stages) == 0 {
		return FallbackClosedStage
	}
	return p.stages[len(p.stages)-1].Key
}

// Contains reports whether key is a configured stage.
func (p *Pipeline) Contains(key string) bool {
	_, ok := p.index[key]
	return ok
}

// InitialStage resolves the stage of a lead being created: the requested
// stage when one is given, the entry stage otherwise.
func (p *Pipeline) InitialStage(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return p.EntryStage(), nil
	}
	if err := p.check(requested); err != nil {
		return "", err
	}
	return requested, nil
}

// Transition validates a move to the target stage.  The current stage plays
// no part in the decision; it is accepted so callers state both ends.
func (p *Pipeline) Transition(_ string, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", ErrStageRequired
	}
	if err := p.check(target); err != nil {
		return "", err
	}
	return target, nil
}

func (p *Pipeline) check(key string) error {
	if p.strict && !p.Contains(key) {
		return fmt.Errorf("%w: %q", ErrUnknownStage, key)
	}
	return nil
}

// ConversionRate is the percentage of leads in the closed stage, rounded to
// one decimal place.  Zero leads yields zero.
func ConversionRate(closed, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(closed) / float64(total) * 100
	return float64(int64(pct*10+0.5)) / 10
}
