package examtype

import (
	"github.com/pkg/errors"
)

// PausePolicy holds when and for how long an exam may be paused.
type PausePolicy struct {
	Allowed              bool  `json:"allowed"`
	CheckpointMinutes    []int `json:"checkpoint_minutes"` // offsets from exam start, strictly increasing
	PauseDurationMinutes int   `json:"pause_duration_minutes"`
}

// Definition describes one exam type. Values are immutable once registered.
type Definition struct {
	ID                      string       `json:"id"`
	Title                   string       `json:"title,omitempty"`
	QuestionCount           int          `json:"question_count"`
	DurationMinutes         int          `json:"duration_minutes"`
	OptionsPerQuestion      int          `json:"options_per_question"`
	AllowsMultipleSelection bool         `json:"allows_multiple_selection"`
	MinimumPassingScore     *float64     `json:"minimum_passing_score"` // percentage; nil until defined
	PausePolicy             *PausePolicy `json:"pause_policy,omitempty"`
}

// DisabledPausePolicy is returned when a type carries no pause policy.
func DisabledPausePolicy() PausePolicy {
	return PausePolicy{Allowed: false, CheckpointMinutes: []int{}, PauseDurationMinutes: 0}
}

func (p PausePolicy) clone() PausePolicy {
	out := p
	out.CheckpointMinutes = append([]int{}, p.CheckpointMinutes...)
	return out
}

func (d Definition) clone() Definition {
	out := d
	if d.MinimumPassingScore != nil {
		v := *d.MinimumPassingScore
		out.MinimumPassingScore = &v
	}
	if d.PausePolicy != nil {
		p := d.PausePolicy.clone()
		out.PausePolicy = &p
	}
	return out
}

// Validate runs the consistency checks every registered definition must pass.
func Validate(d Definition) error {
	if d.ID == "" {
		return errors.New("exam type id is required")
	}
	if d.QuestionCount <= 0 {
		return errors.Errorf("%s: question_count must be positive", d.ID)
	}
	if d.DurationMinutes <= 0 {
		return errors.Errorf("%s: duration_minutes must be positive", d.ID)
	}
	if d.OptionsPerQuestion <= 0 {
		return errors.Errorf("%s: options_per_question must be positive", d.ID)
	}
	if s := d.MinimumPassingScore; s != nil && (*s < 0 || *s > 100) {
		return errors.Errorf("%s: minimum_passing_score must be within 0..100", d.ID)
	}
	if d.PausePolicy == nil {
		return nil
	}
	p := d.PausePolicy
	if p.PauseDurationMinutes < 0 {
		return errors.Errorf("%s: negative pause_duration_minutes", d.ID)
	}
	prev := -1
	for _, m := range p.CheckpointMinutes {
		if m <= prev {
			return errors.Errorf("%s: checkpoint %d is not strictly increasing", d.ID, m)
		}
		if m < 0 || m >= d.DurationMinutes {
			return errors.Errorf("%s: checkpoint %d outside 0..%d", d.ID, m, d.DurationMinutes-1)
		}
		prev = m
	}
	return nil
}
