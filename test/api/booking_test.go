package api_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate() string {
	return time.Now().AddDate(0, 1, 0).Format("2006-01-02")
}

// openSlot picks a slot the schedule leaves available on the test date.
func openSlot(t *testing.T, date string) string {
	t.Helper()
	resp := makeRequest("GET", "/availability?date="+date, nil, "")
	require.True(t, resp.IsSuccess(), "Failed to fetch availability: %s", resp.Message)

	slots, ok := resp.Data["available_slots"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, slots, "No open slots on %s", date)
	slot, ok := slots[0].(string)
	require.True(t, ok)
	return slot
}

func createHold(date, slot, email string) TestResponse {
	return makeRequest("POST", "/bookings/holds", map[string]interface{}{
		"service_id":      "tarot-reading",
		"selected_date":   date,
		"selected_time":   slot,
		"requester_name":  "Test Holder",
		"requester_email": email,
	}, "")
}

func TestHoldFlow(t *testing.T) {
	requireServer(t)

	date := testDate()
	slot := openSlot(t, date)

	// Slot starts free
	takenResp := makeRequest("GET", fmt.Sprintf("/bookings/taken?service_id=tarot-reading&date=%s&time=%s", date, slot), nil, "")
	require.True(t, takenResp.IsSuccess())
	assert.False(t, takenResp.GetBool("taken"))

	// Place a hold
	holdResp := createHold(date, slot, holdEmail)
	require.True(t, holdResp.IsSuccess(), "Failed to create hold: %s", holdResp.Message)
	holdID := holdResp.GetString("hold_id")
	require.NotEmpty(t, holdID)
	assert.NotZero(t, holdResp.Data["expires_at"])

	// Slot is now taken
	takenResp = makeRequest("GET", fmt.Sprintf("/bookings/taken?service_id=tarot-reading&date=%s&time=%s", date, slot), nil, "")
	require.True(t, takenResp.IsSuccess())
	assert.True(t, takenResp.GetBool("taken"))

	// A second requester is rejected on the same slot
	rivalResp := createHold(date, slot, fmt.Sprintf("rival_%d@example.com", time.Now().UnixNano()))
	assert.False(t, rivalResp.IsSuccess())
	assert.Equal(t, 409, rivalResp.StatusCode)
	assert.Equal(t, "SLOT_TAKEN", rivalResp.Code)

	// The holder cannot stack a second hold elsewhere
	otherDate := time.Now().AddDate(0, 1, 1).Format("2006-01-02")
	dupResp := createHold(otherDate, openSlot(t, otherDate), holdEmail)
	assert.False(t, dupResp.IsSuccess())
	assert.Equal(t, 409, dupResp.StatusCode)
	assert.Equal(t, "DUPLICATE_HOLD", dupResp.Code)

	// Release frees the slot
	releaseResp := makeRequest("DELETE", "/bookings/holds/"+holdID, nil, "")
	require.True(t, releaseResp.IsSuccess(), "Failed to release hold: %s", releaseResp.Message)

	takenResp = makeRequest("GET", fmt.Sprintf("/bookings/taken?service_id=tarot-reading&date=%s&time=%s", date, slot), nil, "")
	require.True(t, takenResp.IsSuccess())
	assert.False(t, takenResp.GetBool("taken"))

	// Second release is not found
	releaseResp = makeRequest("DELETE", "/bookings/holds/"+holdID, nil, "")
	assert.Equal(t, 404, releaseResp.StatusCode)
	assert.Equal(t, "NOT_FOUND", releaseResp.Code)
}

func TestConfirmFlow(t *testing.T) {
	requireServer(t)

	date := time.Now().AddDate(0, 1, 2).Format("2006-01-02")
	slot := openSlot(t, date)
	email := fmt.Sprintf("confirmer_%d@example.com", time.Now().UnixNano())

	holdResp := createHold(date, slot, email)
	require.True(t, holdResp.IsSuccess(), "Failed to create hold: %s", holdResp.Message)
	holdID := holdResp.GetString("hold_id")
	require.NotEmpty(t, holdID)

	confirmResp := makeRequest("POST", "/bookings/holds/"+holdID+"/confirm", nil, "")
	require.True(t, confirmResp.IsSuccess(), "Failed to confirm hold: %s", confirmResp.Message)
	assert.Equal(t, "CONFIRMED", confirmResp.GetString("status"))
	assert.Equal(t, slot, confirmResp.GetString("selected_time"))

	// Slot stays taken after confirmation
	takenResp := makeRequest("GET", fmt.Sprintf("/bookings/taken?service_id=tarot-reading&date=%s&time=%s", date, slot), nil, "")
	require.True(t, takenResp.IsSuccess())
	assert.True(t, takenResp.GetBool("taken"))

	// A confirmed booking is no longer a hold
	confirmResp = makeRequest("POST", "/bookings/holds/"+holdID+"/confirm", nil, "")
	assert.Equal(t, 404, confirmResp.StatusCode)
	assert.Equal(t, "NOT_FOUND", confirmResp.Code)

	releaseResp := makeRequest("DELETE", "/bookings/holds/"+holdID, nil, "")
	assert.Equal(t, 404, releaseResp.StatusCode)
}

func TestHoldValidation(t *testing.T) {
	requireServer(t)

	date := testDate()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing email", map[string]interface{}{
			"service_id":     "tarot-reading",
			"selected_date":  date,
			"selected_time":  "2:00 PM",
			"requester_name": "Test Holder",
		}},
		{"bad date", map[string]interface{}{
			"service_id":      "tarot-reading",
			"selected_date":   "next tuesday",
			"selected_time":   "2:00 PM",
			"requester_name":  "Test Holder",
			"requester_email": "v@example.com",
		}},
		{"unknown slot", map[string]interface{}{
			"service_id":      "tarot-reading",
			"selected_date":   date,
			"selected_time":   "3:30 PM",
			"requester_name":  "Test Holder",
			"requester_email": "v@example.com",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := makeRequest("POST", "/bookings/holds", tt.body, "")
			assert.Equal(t, 400, resp.StatusCode)
		})
	}

	// Malformed hold id
	resp := makeRequest("DELETE", "/bookings/holds/not-a-uuid", nil, "")
	assert.Equal(t, 400, resp.StatusCode)
}
