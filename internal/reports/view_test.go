package reports

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomreports/pkg/contracts/domain"
)

func TestUsageWidth(t *testing.T) {
	assert.Equal(t, 0.0, UsageWidth(-5))
	assert.Equal(t, 42.5, UsageWidth(42.5))
	assert.Equal(t, 100.0, UsageWidth(100))
	assert.Equal(t, 100.0, UsageWidth(180))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[....................]", progressBar(0))
	assert.Equal(t, "[##########..........]", progressBar(50))
	assert.Equal(t, "[####################]", progressBar(250))
}

func TestRenderText_Loading(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, ViewState{Status: StatusLoading, Loading: true}))
	assert.Equal(t, "Loading report data...\n", buf.String())
}

func TestRenderText_EmptyTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, ViewState{Status: StatusError, Error: "Failed to load report data: boom"}))

	out := buf.String()
	assert.Contains(t, out, "! Failed to load report data: boom")
	assert.Equal(t, 3, strings.Count(out, "No data available"))
	assert.Contains(t, out, "0 approved, 0 pending")
}

func TestRenderText_Report(t *testing.T) {
	report := Normalize(samplePayload(20))
	report.PopularRooms = append(report.PopularRooms, domain.PopularRoom{Room: "Annex", Percentage: 140})

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, ViewState{
		Status:   StatusReady,
		Snapshot: &Snapshot{Report: report, FetchedAt: fixedNow, Source: "api-client"},
	}))

	out := buf.String()
	assert.Contains(t, out, "19 approved, 0 pending")
	assert.Contains(t, out, "[#############.......] 62.5%")
	assert.Contains(t, out, "[####################] 140.0%")
	assert.Contains(t, out, "Dana Lee")
	assert.Equal(t, 1, strings.Count(out, "No data available"), "only monthly activity is empty")
	assert.Contains(t, out, "Last updated 2026-10-01 09:30:00 via api-client")
}
