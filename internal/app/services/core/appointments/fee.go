package appointments

import "strings"

const baselineFee = 50.0

type feeSlot struct {
	Label string
	Fee   float64
}

// feeSchedule is ordered by time of day.
var feeSchedule = []feeSlot{
	{Label: "9:00 AM", Fee: 50},
	{Label: "10:00 AM", Fee: 50},
	{Label: "11:00 AM", Fee: 75},
	{Label: "2:00 PM", Fee: 50},
	{Label: "3:00 PM", Fee: 75},
}

type reasonCategory struct {
	Keywords []string
	Floor    float64
}

// reasonCategories are scanned in order and only the first match raises the fee.
var reasonCategories = []reasonCategory{
	{Keywords: []string{"consultation", "follow-up"}, Floor: 50},
	{Keywords: []string{"checkup", "physical"}, Floor: 100},
	{Keywords: []string{"emergency", "urgent"}, Floor: 150},
}

// CalculateFee prices an appointment from its slot label and reason text.
// Slot labels are matched exactly.
func CalculateFee(timeSlot, reason string) float64 {
	fee := baselineFee
	for _, slot := range feeSchedule {
		if slot.Label == timeSlot {
			fee = slot.Fee
			break
		}
	}

	reasonLower := strings.ToLower(reason)
	for _, category := range reasonCategories {
		if containsAny(reasonLower, category.Keywords) {
			return max(fee, category.Floor)
		}
	}
	return fee
}

// ScheduledSlots lists the slot labels a doctor can be booked for in a day.
func ScheduledSlots() []string {
	labels := make([]string, 0, len(feeSchedule))
	for _, slot := range feeSchedule {
		labels = append(labels, slot.Label)
	}
	return labels
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
