package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive(t *testing.T) {
	mod := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := Archive([]File{
		{Name: "a.json", Data: []byte(`{"a":1}`), Modified: mod},
		{Name: "b.json", Data: []byte(`[]`), Modified: mod},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "a.json", zr.File[0].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(body))
}

func TestArchiveRejectsDuplicates(t *testing.T) {
	_, err := Archive([]File{{Name: "x"}, {Name: "x"}})
	require.Error(t, err)
}
