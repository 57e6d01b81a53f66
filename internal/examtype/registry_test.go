package examtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_UnknownFallsBackToFirst(t *testing.T) {
	first := List()[0]
	for _, id := range []string{"", "nope", "PMP", " pmp", "capm2"} {
		t.Run("id="+id, func(t *testing.T) {
			assert.Equal(t, first, Resolve(id))
			assert.Equal(t, Resolve(first.ID), Resolve(id))
		})
	}
}

func TestResolve_Known(t *testing.T) {
	for _, d := range List() {
		got := Resolve(d.ID)
		assert.Equal(t, d.ID, got.ID)
		assert.True(t, Has(d.ID))
	}
	assert.False(t, Has("unknown"))
}

func TestList_ReturnsDefensiveCopies(t *testing.T) {
	l := List()
	require.NotEmpty(t, l)
	require.NotNil(t, l[0].PausePolicy)

	l[0].QuestionCount = -1
	l[0].PausePolicy.CheckpointMinutes[0] = 9999
	l[0].PausePolicy.Allowed = false

	again := Resolve(l[0].ID)
	assert.Positive(t, again.QuestionCount)
	assert.NotEqual(t, 9999, again.PausePolicy.CheckpointMinutes[0])
	assert.True(t, again.PausePolicy.Allowed)

	p := ResolvePausePolicy(l[0].ID)
	p.CheckpointMinutes[0] = 1
	assert.NotEqual(t, 1, ResolvePausePolicy(l[0].ID).CheckpointMinutes[0])
}

func TestBuiltinPausePoliciesAreOrdered(t *testing.T) {
	for _, d := range List() {
		require.NoError(t, Validate(d))
		p := ResolvePausePolicy(d.ID)
		prev := -1
		for _, m := range p.CheckpointMinutes {
			assert.Greater(t, m, prev, d.ID)
			assert.Less(t, m, d.DurationMinutes, d.ID)
			prev = m
		}
	}
}

func TestResolvePausePolicy_MissingIsDisabled(t *testing.T) {
	require.True(t, Has("agile-quiz"))
	p := ResolvePausePolicy("agile-quiz")
	assert.False(t, p.Allowed)
	assert.Empty(t, p.CheckpointMinutes)
	assert.NotNil(t, p.CheckpointMinutes)
	assert.Zero(t, p.PauseDurationMinutes)
}

func TestResolvePausePolicy_UnknownUsesFallback(t *testing.T) {
	assert.Equal(t, ResolvePausePolicy(Default().ID), ResolvePausePolicy("does-not-exist"))
}

func TestValidate(t *testing.T) {
	base := func() Definition {
		return Definition{
			ID: "x", QuestionCount: 10, DurationMinutes: 60, OptionsPerQuestion: 4,
			PausePolicy: &PausePolicy{Allowed: true, CheckpointMinutes: []int{20, 40}, PauseDurationMinutes: 5},
		}
	}
	score := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		mutate  func(d *Definition)
		wantErr bool
	}{
		{name: "ok", mutate: func(d *Definition) {}},
		{name: "no pause policy", mutate: func(d *Definition) { d.PausePolicy = nil }},
		{name: "missing id", mutate: func(d *Definition) { d.ID = "" }, wantErr: true},
		{name: "zero questions", mutate: func(d *Definition) { d.QuestionCount = 0 }, wantErr: true},
		{name: "zero duration", mutate: func(d *Definition) { d.DurationMinutes = 0 }, wantErr: true},
		{name: "zero options", mutate: func(d *Definition) { d.OptionsPerQuestion = 0 }, wantErr: true},
		{name: "passing score ok", mutate: func(d *Definition) { d.MinimumPassingScore = score(61) }},
		{name: "passing score > 100", mutate: func(d *Definition) { d.MinimumPassingScore = score(101) }, wantErr: true},
		{name: "duplicate checkpoint", mutate: func(d *Definition) { d.PausePolicy.CheckpointMinutes = []int{20, 20} }, wantErr: true},
		{name: "decreasing checkpoint", mutate: func(d *Definition) { d.PausePolicy.CheckpointMinutes = []int{40, 20} }, wantErr: true},
		{name: "checkpoint at duration", mutate: func(d *Definition) { d.PausePolicy.CheckpointMinutes = []int{60} }, wantErr: true},
		{name: "negative checkpoint", mutate: func(d *Definition) { d.PausePolicy.CheckpointMinutes = []int{-1} }, wantErr: true},
		{name: "negative pause", mutate: func(d *Definition) { d.PausePolicy.PauseDurationMinutes = -1 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.mutate(&d)
			err := Validate(d)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRegistry_PanicsOnBadTable(t *testing.T) {
	assert.Panics(t, func() { newRegistry(nil) })
	good := Definition{ID: "a", QuestionCount: 1, DurationMinutes: 1, OptionsPerQuestion: 2}
	assert.Panics(t, func() { newRegistry([]Definition{good, good}) })
	assert.Panics(t, func() { newRegistry([]Definition{{ID: "bad"}}) })
}
