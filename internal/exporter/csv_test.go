package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WriteSheets(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVWriter(false).WriteSheets(&buf, ReportSheets(sampleReport()))
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Statistics\nMetric,Value\nTotal Reservations,42\n"))
	assert.Contains(t, out, "\n\nPopular Rooms\nRoom,Reservations,Usage %,By Professors,By Students,By Admins\nB-101,17,40.5,5,11,1\n")
	assert.Contains(t, out, "Unknown User,Unknown Role,0\n")
	assert.Contains(t, out, "Monthly Activity\nMonth,Professor Reservations,Student Reservations,Admin Reservations,Total\n2026-09,4,9,0,13\n")
}

func TestCSVWriter_BOMPrefix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(true).WriteSheets(&buf, nil))
	assert.Equal(t, utf8BOM, buf.Bytes())
}

func TestCSVWriter_QuotesCommas(t *testing.T) {
	var buf bytes.Buffer
	sheet := Sheet{Name: "Rooms", Headers: []string{"Room"}, Rows: [][]any{{"Hall A, East"}}}
	require.NoError(t, NewCSVWriter(false).WriteSheets(&buf, []Sheet{sheet}))
	assert.Equal(t, "Rooms\nRoom\n\"Hall A, East\"\n", buf.String())
}
