package d0z0

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreciseTicks(t *testing.T) {
	var labeled []float64
	for _, tick := range (PreciseTicks{NSuggestedTicks: 5}).Ticks(-1, 1) {
		if tick.Label != "" {
			labeled = append(labeled, tick.Value)
		}
	}
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, labeled)

	assert.NotEmpty(t, PreciseTicks{}.Ticks(11.7, 15.7))
}

func TestArrayFlags(t *testing.T) {
	moms := FloatArrayFlags{Array: []float64{1, 5, 10, 50, 100}}
	dets := StringArrayFlags{Array: []string{"IDEA_base25"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&moms, "mom", "")
	fs.Var(&dets, "d", "")

	require.NoError(t, fs.Parse([]string{"-mom", "1,5", "-mom", "50", "-d", "IDEA_2T", "-d", " CLD_2T ,"}))
	assert.Equal(t, []float64{1, 5, 50}, moms.Array)
	assert.Equal(t, []string{"IDEA_2T", "CLD_2T"}, dets.Array)
	assert.True(t, moms.Contains(50))
	assert.False(t, moms.Contains(10))
	assert.True(t, (&FloatArrayFlags{}).Contains(10))

	assert.Error(t, fs.Parse([]string{"-mom", "ten"}))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}
