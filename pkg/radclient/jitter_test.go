package radclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitter_BoundedMagnitude(t *testing.T) {
	input := int64(time.Second)
	for i := 0; i < 1000; i++ {
		offset := jitter(input)
		assert.LessOrEqual(t, offset, input)
		assert.GreaterOrEqual(t, offset, -input)
	}
}

func TestJitter_ZeroInputIsZero(t *testing.T) {
	assert.Equal(t, int64(0), jitter(0))
}

func TestJitterDuration_NeverBelowOneMillisecond(t *testing.T) {
	for i := 0; i < 1000; i++ {
		d := jitterDuration(time.Millisecond)
		assert.GreaterOrEqual(t, d, time.Millisecond)
	}
}

func TestJitterDuration_StaysCloseToNominal(t *testing.T) {
	nominal := 500 * time.Millisecond
	for i := 0; i < 200; i++ {
		d := jitterDuration(nominal)
		assert.LessOrEqual(t, d, nominal+nominal)
		assert.GreaterOrEqual(t, d, time.Millisecond)
	}
}
