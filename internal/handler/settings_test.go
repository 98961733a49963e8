package handler

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCSV(t *testing.T) {
	out, err := settingsCSV(map[string]string{
		"company_name":     `Sky "n" Sea Travels`,
		"booking_timeout":  "24",
		"default_currency": "BDT",
		"office_address":   "12 Motijheel C/A,\nDhaka",
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"key", "value"}, rows[0])

	// Keys are sorted; quoted and multi-line values survive a round trip.
	assert.Equal(t, []string{"booking_timeout", "24"}, rows[1])
	assert.Equal(t, []string{"company_name", `Sky "n" Sea Travels`}, rows[2])
	assert.Equal(t, []string{"default_currency", "BDT"}, rows[3])
	assert.Equal(t, []string{"office_address", "12 Motijheel C/A,\nDhaka"}, rows[4])
}
