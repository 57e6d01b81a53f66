package examtype

// builtin is the static exam-type table. Order matters: the first entry is
// the fallback.
var builtin = []Definition{
	{
		// Full-length PMP simulation: two optional 10-minute breaks,
		// offered roughly after each third of the exam.
		ID:                      "pmp",
		Title:                   "PMP full simulation",
		QuestionCount:           180,
		DurationMinutes:         230,
		OptionsPerQuestion:      4,
		AllowsMultipleSelection: true,
		PausePolicy: &PausePolicy{
			Allowed:              true,
			CheckpointMinutes:    []int{76, 153},
			PauseDurationMinutes: 10,
		},
	},
	{
		ID:                      "capm",
		Title:                   "CAPM simulation",
		QuestionCount:           150,
		DurationMinutes:         180,
		OptionsPerQuestion:      4,
		AllowsMultipleSelection: false,
		PausePolicy: &PausePolicy{
			Allowed:              true,
			CheckpointMinutes:    []int{90},
			PauseDurationMinutes: 10,
		},
	},
	{
		ID:                      "pmp-mini",
		Title:                   "PMP 60-question drill",
		QuestionCount:           60,
		DurationMinutes:         76,
		OptionsPerQuestion:      4,
		AllowsMultipleSelection: true,
		PausePolicy: &PausePolicy{
			Allowed:           false,
			CheckpointMinutes: []int{},
		},
	},
	{
		// No pause policy at all: ResolvePausePolicy yields the disabled one.
		ID:                 "agile-quiz",
		Title:              "Agile quick quiz",
		QuestionCount:      30,
		DurationMinutes:    40,
		OptionsPerQuestion: 4,
	},
}
