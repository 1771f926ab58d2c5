package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 40.0, Percentage(4, 10))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 0.0, Percentage(5, 0))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.5, SafeDivide(5, 2))
	assert.Equal(t, 0.0, SafeDivide(5, 0))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(7550), ToMinorUnits(75.5))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, 150.0, FromMinorUnits(15000))
}
