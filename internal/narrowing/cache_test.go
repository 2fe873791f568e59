package narrowing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIgnoresMapOrder(t *testing.T) {
	a := map[string]string{"purpose": "study", "durationOfStay": "long"}
	b := map[string]string{"durationOfStay": "long", "purpose": "study"}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(map[string]string{"purpose": "study"}))
	assert.NotEqual(t,
		Fingerprint(map[string]string{"ab": "c"}),
		Fingerprint(map[string]string{"a": "bc"}),
	)
}

func TestCachedEngineMatchesEngine(t *testing.T) {
	e := newDefaultEngine(t)
	cached := NewCachedEngine(e, time.Minute, time.Minute)
	answers := map[string]string{"purpose": "study"}

	want := e.Compute(answers)
	assert.Equal(t, want, cached.Compute(answers))
	assert.Equal(t, want, cached.Compute(answers))
}

func TestCachedEngineReturnsCopies(t *testing.T) {
	cached := NewCachedEngine(newDefaultEngine(t), time.Minute, time.Minute)
	answers := map[string]string{"purpose": "tourism"}

	first := cached.Compute(answers)
	require.NotEmpty(t, first.Candidates)
	first.Candidates[0] = "mutated"
	first.Next.Key = "mutated"

	second := cached.Compute(answers)
	assert.Equal(t, "B-1", second.Candidates[0])
	assert.Equal(t, "durationOfStay", second.Next.Key)
}

func TestCachedEngineConcurrent(t *testing.T) {
	cached := NewCachedEngine(newDefaultEngine(t), time.Minute, time.Minute)
	answers := map[string]string{"purpose": "employment"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state := cached.Compute(answers)
			assert.NotEmpty(t, state.Candidates)
		}()
	}
	wg.Wait()
}
