// Package timeslot holds the fixed catalog of bookable time labels shared by
// the availability resolver, the conflict checker, and request validation.
package timeslot

// Catalog returns the display labels of the daily slots, in day order.
// Labels are opaque to the reservation logic; they are never parsed as times.
func Catalog() []string {
	return []string{
		"10:00 AM",
		"12:00 PM",
		"2:00 PM",
		"5:00 PM",
		"8:00 PM",
	}
}

func Valid(label string) bool {
	for _, s := range Catalog() {
		if s == label {
			return true
		}
	}
	return false
}
