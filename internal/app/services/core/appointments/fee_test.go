package appointments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateFee(t *testing.T) {
	tests := []struct {
		name     string
		timeSlot string
		reason   string
		want     float64
	}{
		{name: "emergency raises a premium slot", timeSlot: "11:00 AM", reason: "Emergency visit", want: 150},
		{name: "consultation keeps the base fee", timeSlot: "9:00 AM", reason: "routine consultation", want: 50},
		{name: "unknown slot falls back to baseline", timeSlot: "unknown-slot", reason: "checkup", want: 100},
		{name: "premium slot without keywords", timeSlot: "3:00 PM", reason: "back pain", want: 75},
		{name: "floor never lowers the base", timeSlot: "11:00 AM", reason: "follow-up", want: 75},
		{name: "first category wins", timeSlot: "9:00 AM", reason: "Urgent follow-up consultation", want: 50},
		{name: "case insensitive", timeSlot: "2:00 PM", reason: "ANNUAL PHYSICAL", want: 100},
		{name: "labels are opaque", timeSlot: "09:00 AM", reason: "", want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateFee(tt.timeSlot, tt.reason))
		})
	}
}

func TestScheduledSlots(t *testing.T) {
	assert.Equal(t, []string{"9:00 AM", "10:00 AM", "11:00 AM", "2:00 PM", "3:00 PM"}, ScheduledSlots())
}
