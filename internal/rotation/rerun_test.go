package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequency_Interval(t *testing.T) {
	assert.Equal(t, 0, FrequencyNever.Interval())
	assert.Equal(t, 10, FrequencyRarely.Interval())
	assert.Equal(t, 5, FrequencySometimes.Interval())
	assert.Equal(t, 2, FrequencyOften.Interval())
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" Often ")
	require.NoError(t, err)
	assert.Equal(t, FrequencyOften, f)

	f, err = ParseFrequency("")
	require.NoError(t, err)
	assert.Equal(t, FrequencySometimes, f)

	_, err = ParseFrequency("daily")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRerunPolicy_NeverBeforeFirstAiring(t *testing.T) {
	p := RerunPolicy{Enabled: true, Frequency: FrequencyOften}
	c := NewCursor(1, false, 3, nil, 24)
	c.NewSinceRerun = 10
	assert.False(t, p.IsRerun(c))
}

func TestRerunPolicy_DueAfterInterval(t *testing.T) {
	p := RerunPolicy{Enabled: true, Frequency: FrequencyOften}
	c := NewCursor(1, false, 10, nil, 24)
	_, c = c.Advance()
	c.NewSinceRerun = 1
	assert.False(t, p.IsRerun(c))
	c.NewSinceRerun = 2
	assert.True(t, p.IsRerun(c))
}

func TestRerunPolicy_DisabledNeverReruns(t *testing.T) {
	c := NewCursor(1, false, 1, nil, 24)
	_, c = c.Advance()
	c.NewSinceRerun = 50

	for _, p := range []RerunPolicy{
		{Enabled: false, Frequency: FrequencyOften},
		{Enabled: true, Frequency: FrequencyNever},
	} {
		assert.False(t, p.IsRerun(c))
		assert.False(t, p.Eligible(c), "exhausted item must drop out")
	}
}

func TestRerunPolicy_ExhaustedKeepsOnlyItsDueRerun(t *testing.T) {
	p := RerunPolicy{Enabled: true, Frequency: FrequencyRarely}
	c := NewCursor(1, false, 1, nil, 24)
	_, c = c.Advance()

	c.NewSinceRerun = 1
	assert.False(t, p.IsRerun(c))
	assert.False(t, p.Eligible(c), "no rerun due")

	c.NewSinceRerun = 10
	assert.True(t, p.Eligible(c))
	assert.True(t, p.IsRerun(c))

	empty := NewCursor(2, false, 0, nil, 24)
	assert.False(t, p.Eligible(empty))
}
