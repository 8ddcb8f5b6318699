package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	assert.Equal(t, []string{"10:00 AM", "12:00 PM", "2:00 PM", "5:00 PM", "8:00 PM"}, catalog)

	// Catalog hands out a copy; callers cannot mutate the canonical order.
	catalog[0] = "mutated"
	assert.Equal(t, "10:00 AM", Catalog()[0])
}

func TestValid(t *testing.T) {
	for _, label := range Catalog() {
		assert.True(t, Valid(label), "label %q", label)
	}

	for _, label := range []string{"", "10:00", "10:00 am", "3:30 PM", "14:00"} {
		assert.False(t, Valid(label), "label %q", label)
	}
}
