package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSink_Deliver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	sink := NewDirSink(dir)

	path, err := sink.Deliver(context.Background(), CSVArtifact([]byte("a,b\n")))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, CSVFileName), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(content))

	// A second download replaces the first
	_, err = sink.Deliver(context.Background(), CSVArtifact([]byte("c,d\n")))
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c,d\n", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestDirSink_Errors(t *testing.T) {
	sink := NewDirSink(t.TempDir())

	_, err := sink.Deliver(context.Background(), Artifact{Data: []byte("x")})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sink.Deliver(ctx, XLSXArtifact([]byte("x")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArtifacts(t *testing.T) {
	assert.Equal(t, "campus_room_report.csv", CSVArtifact(nil).Name)
	assert.Equal(t, "text/csv", CSVArtifact(nil).ContentType)
	assert.Equal(t, "campus_room_report.xlsx", XLSXArtifact(nil).Name)
	assert.Equal(t, XLSXContentType, XLSXArtifact(nil).ContentType)
}
