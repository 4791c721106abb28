package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = content
	}
	return out
}

func TestBuild(t *testing.T) {
	var buf bytes.Buffer
	err := Build(&buf, []Item{
		{Name: "b.png", Data: []byte("content-b")},
		{Name: "c.png", Data: []byte("content-c")},
	})
	require.NoError(t, err)

	files := readArchive(t, buf.Bytes())
	require.Len(t, files, 2)
	assert.Equal(t, []byte("content-b"), files["b.png"])
	assert.Equal(t, []byte("content-c"), files["c.png"])
}

func TestBuild_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Build(&buf, nil))

	files := readArchive(t, buf.Bytes())
	assert.Empty(t, files)
}

func TestBuild_DuplicateNames(t *testing.T) {
	var buf bytes.Buffer
	err := Build(&buf, []Item{
		{Name: "photo.webp", Data: []byte("one")},
		{Name: "photo.webp", Data: []byte("two")},
		{Name: "photo.webp", Data: []byte("three")},
	})
	require.NoError(t, err)

	files := readArchive(t, buf.Bytes())
	require.Len(t, files, 3)
	assert.Equal(t, []byte("one"), files["photo.webp"])
	assert.Equal(t, []byte("two"), files["photo (1).webp"])
	assert.Equal(t, []byte("three"), files["photo (2).webp"])
}

func TestBuild_NameWithoutExtension(t *testing.T) {
	var buf bytes.Buffer
	err := Build(&buf, []Item{
		{Name: "noext", Data: []byte("a")},
		{Name: "noext", Data: []byte("b")},
	})
	require.NoError(t, err)

	files := readArchive(t, buf.Bytes())
	require.Len(t, files, 2)
	assert.Contains(t, files, "noext")
	assert.Contains(t, files, "noext (1)")
}
