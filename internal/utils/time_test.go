package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysToMillis(t *testing.T) {
	assert.Equal(t, int64(86400000), DaysToMillis(1))
	assert.Equal(t, int64(7776000000), DaysToMillis(90))
	assert.Equal(t, int64(43200000), DaysToMillis(0.5))
}

func TestUpperMinute(t *testing.T) {
	base := time.Date(2021, 6, 1, 9, 30, 24, 500_000_000, time.UTC)
	assert.Equal(t, time.Date(2021, 6, 1, 9, 31, 0, 0, time.UTC), UpperMinute(base))

	// An exact minute still moves to the next boundary
	exact := time.Date(2021, 6, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2021, 6, 1, 9, 31, 0, 0, time.UTC), UpperMinute(exact))
}

func TestNowMillis(t *testing.T) {
	before := time.Now().UnixMilli()
	got := NowMillis()
	after := time.Now().UnixMilli()
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
}
