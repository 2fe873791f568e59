package narrowing

import (
	"testing"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	catalog, err := LoadCatalog("")
	require.NoError(t, err)
	return NewEngine(catalog, opts...)
}

func TestComputeEmptyHistory(t *testing.T) {
	e := newDefaultEngine(t)

	state := e.Compute(map[string]string{})

	assert.Equal(t, e.Universe(), state.Candidates)
	require.NotNil(t, state.Next)
	assert.Equal(t, "purpose", state.Next.Key)
	assert.NotEmpty(t, state.Next.Options)
	assert.Nil(t, state.Outcome)
	assert.Greater(t, state.RemainingDepth, 0)
}

func TestComputeTourism(t *testing.T) {
	e := newDefaultEngine(t)

	state := e.Compute(map[string]string{"purpose": "tourism"})

	assert.Equal(t, []string{"B-1", "B-2", "ESTA"}, state.Candidates)
	require.NotNil(t, state.Next)
	assert.Equal(t, "durationOfStay", state.Next.Key)
	assert.Equal(t, 1, state.AnsweredCount)

	outcome := e.Resolve(state)
	assert.Equal(t, "B-2", outcome.VisaCode)
	assert.NotEmpty(t, outcome.Rationale)
}

func TestComputeAnswerValueIsCaseInsensitive(t *testing.T) {
	e := newDefaultEngine(t)

	a := e.Compute(map[string]string{"purpose": "tourism"})
	b := e.Compute(map[string]string{"purpose": " Tourism "})

	assert.Equal(t, a.Candidates, b.Candidates)
}

func TestComputeSingleCandidateTerminates(t *testing.T) {
	e := newDefaultEngine(t)

	state := e.Compute(map[string]string{"purpose": "medical"})

	assert.True(t, state.IsTerminal())
	require.NotNil(t, state.Outcome)
	assert.Equal(t, "B-2", state.Outcome.VisaCode)
	assert.False(t, state.Outcome.Fallback)
}

func TestComputeContradictionFallsBack(t *testing.T) {
	e := newDefaultEngine(t)

	state := e.Compute(map[string]string{
		"purpose":        "tourism",
		"durationOfStay": "permanent",
	})

	assert.Empty(t, state.Candidates)
	require.NotNil(t, state.Outcome)
	assert.True(t, state.Outcome.Fallback)
	assert.Equal(t, "B-2", state.Outcome.VisaCode)
}

func TestComputeMaxQuestions(t *testing.T) {
	e := newDefaultEngine(t, WithMaxQuestions(1))

	state := e.Compute(map[string]string{"purpose": "other"})

	assert.True(t, state.IsTerminal())
	require.NotNil(t, state.Outcome)
	assert.Len(t, state.Candidates, len(e.Universe()))
	assert.Equal(t, "B-2", state.Outcome.VisaCode)
}

func TestComputeCitizenshipBranch(t *testing.T) {
	e := newDefaultEngine(t)

	state := e.Compute(map[string]string{"purpose": "citizenship"})
	require.NotNil(t, state.Next)
	assert.Equal(t, "currentStatus", state.Next.Key)

	state = e.Compute(map[string]string{"purpose": "citizenship", "currentStatus": "permanent_resident"})
	require.NotNil(t, state.Outcome)
	assert.Equal(t, "N-400", state.Outcome.VisaCode)
}

func TestComputeAdoptionBranch(t *testing.T) {
	e := newDefaultEngine(t)

	state := e.Compute(map[string]string{"purpose": "adoption"})
	require.NotNil(t, state.Next)
	assert.Equal(t, "adoptionType", state.Next.Key)

	state = e.Compute(map[string]string{"purpose": "adoption", "adoptionType": "international"})
	require.NotNil(t, state.Next)
	assert.Equal(t, "adoptionCompleted", state.Next.Key)

	state = e.Compute(map[string]string{"purpose": "adoption", "adoptionType": "international", "adoptionCompleted": "no"})
	require.NotNil(t, state.Outcome)
	assert.Equal(t, "IR-4", state.Outcome.VisaCode)
}

func TestComputeUnknownKeysDoNotFilter(t *testing.T) {
	e := newDefaultEngine(t)

	state := e.Compute(map[string]string{"favouriteColour": "blue"})

	assert.Len(t, state.Candidates, len(e.Universe()))
	assert.Equal(t, 1, state.AnsweredCount)
	require.NotNil(t, state.Next)
	assert.Equal(t, "purpose", state.Next.Key)
}

func TestComputeNeverReasksAndNarrowsMonotonically(t *testing.T) {
	e := newDefaultEngine(t)
	purpose := e.rulesByKey["purpose"]

	for pick := 0; pick < 3; pick++ {
		for _, opt := range purpose.Options {
			answers := map[string]string{}
			state := e.Compute(answers)
			prev := state.Candidates

			for steps := 0; state.Next != nil; steps++ {
				require.Less(t, steps, 50, "interview did not terminate")

				q := state.Next
				_, seen := answers[q.Key]
				require.False(t, seen, "question %s asked twice", q.Key)

				value := q.Options[(pick+steps)%len(q.Options)].Value
				if q.Key == "purpose" {
					value = opt.Value
				}
				answers[q.Key] = value

				state = e.Compute(answers)
				assert.Subset(t, prev, state.Candidates)
				assert.LessOrEqual(t, len(state.Candidates), len(prev))
				prev = state.Candidates
			}

			require.NotNil(t, state.Outcome)
			assert.NotEmpty(t, state.Outcome.VisaCode)
			assert.NotEmpty(t, state.Outcome.Rationale)
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	e := newDefaultEngine(t)
	answers := map[string]string{"purpose": "employment", "hasEmployerSponsor": "yes"}

	first := e.Compute(answers)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Compute(answers))
	}
}

func TestBestTieBreaksOnCode(t *testing.T) {
	catalog, err := ParseCatalog([]byte(`
max_questions: 3
fallback_visa: A-1
visas:
  - {code: B-1, name: Bravo, weight: 10}
  - {code: A-1, name: Alpha, weight: 10}
  - {code: C-1, name: Charlie, weight: 5}
questions:
  - key: q
    prompt: Pick
    options:
      - {value: ab, label: AB, allow: [A-1, B-1]}
      - {value: c, label: C, allow: [C-1]}
`))
	require.NoError(t, err)
	e := NewEngine(catalog)

	state := e.Compute(map[string]string{"q": "ab"})

	require.NotNil(t, state.Outcome, "no discriminating question left")
	assert.Equal(t, "A-1", state.Outcome.VisaCode)
}

func TestDirect(t *testing.T) {
	e := newDefaultEngine(t)

	outcome, err := e.Direct("H-1B")
	require.NoError(t, err)
	assert.Equal(t, "H-1B", outcome.VisaCode)
	assert.Contains(t, outcome.Rationale, "User selected H-1B (Specialty Occupation Worker) directly")

	_, err = e.Direct("XX-9")
	assert.ErrorIs(t, err, entity.ErrInvalidVisaCode)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no visas", "max_questions: 3\nfallback_visa: A\n"},
		{"bad fallback", "max_questions: 3\nfallback_visa: Z\nvisas: [{code: A, name: A, weight: 1}]\n"},
		{"no max questions", "fallback_visa: A\nvisas: [{code: A, name: A, weight: 1}]\n"},
		{"unknown visa in option", `
max_questions: 3
fallback_visa: A
visas: [{code: A, name: A, weight: 1}]
questions:
  - key: q
    options: [{value: x, allow: [B]}]
`},
		{"duplicate key", `
max_questions: 3
fallback_visa: A
visas: [{code: A, name: A, weight: 1}]
questions:
  - {key: q}
  - {key: q}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
