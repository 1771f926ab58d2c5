package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("contains is inclusive on both ends", func(t *testing.T) {
		window := NewDateRange(start, start.AddDate(0, 0, 7))
		assert.True(t, window.Contains(start))
		assert.True(t, window.Contains(start.AddDate(0, 0, 7)))
		assert.False(t, window.Contains(start.Add(-time.Nanosecond)))
	})

	t.Run("days rounds partial days up", func(t *testing.T) {
		assert.Equal(t, 7, NewDateRange(start, start.AddDate(0, 0, 7)).Days())
		assert.Equal(t, 1, NewDateRange(start, start.Add(3*time.Hour)).Days())
		assert.Equal(t, 0, NewDateRange(start, start).Days())
		assert.Equal(t, 0, NewDateRange(start, start.Add(-time.Hour)).Days())
	})

	t.Run("calendar day drops the clock", func(t *testing.T) {
		local := time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), CalendarDay(local))
	})
}

func TestPatient_Age(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 34, (&Patient{DateOfBirth: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)}).Age(now))
	assert.Equal(t, 33, (&Patient{DateOfBirth: time.Date(1990, 6, 16, 0, 0, 0, 0, time.UTC)}).Age(now))
	assert.Equal(t, 0, (&Patient{}).Age(now))
}

func TestAgeGroupDistribution_Add(t *testing.T) {
	var groups AgeGroupDistribution
	for _, age := range []int{5, 18, 19, 35, 36, 50, 51, 65, 66, 90} {
		groups.Add(age)
	}
	assert.Equal(t, AgeGroupDistribution{Child: 2, YoungAdult: 2, Adult: 2, MiddleAged: 2, Senior: 2}, groups)
}
