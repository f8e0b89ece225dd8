package sidecar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrdersCoreKeysFirst(t *testing.T) {
	m := New("Spotlight").
		Set("location_subject", "Lake Bled, Slovenia").
		Set(KeyURL, "https://example.com/a_1x1.jpg?x=1&y=2").
		Set("description", "").
		Set(KeyTitle, "A lake").
		Set(KeyDate, "2024-01-02 08:00:00").
		Set("interactive_hotspots", "Castle, Island")

	want := "SPOTLIGHT METADATA\n" +
		"====================\n" +
		"Date            : 2024-01-02 08:00:00\n" +
		"Title           : A lake\n" +
		"Url             : https://example.com/a_1x1.jpg?x=1&y=2\n" +
		"Location Subject: Lake Bled, Slovenia\n" +
		"Interactive Hotspots: Castle, Island\n"

	assert.Equal(t, want, string(m.Render()))
}

func TestSetReplacesAndCleans(t *testing.T) {
	m := New("Bing").
		Set(KeyTitle, "old").
		Set(KeyTitle, "Rock &amp; Roll").
		Set(KeyCopyright, "<b>© Someone</b>")

	title, ok := m.Get(KeyTitle)
	require.True(t, ok)
	assert.Equal(t, "Rock & Roll", title)

	copyright, _ := m.Get(KeyCopyright)
	assert.Equal(t, "© Someone", copyright)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Location Subject", Label("location_subject"))
	assert.Equal(t, "Start Date", Label("start_date"))
	assert.Equal(t, "Url", Label("url"))
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/pics/Bing", "metadata", "MountainLake_UHD.txt"), Path("/pics/Bing/MountainLake_UHD.jpg"))
}

func TestWriteCreatesMetadataDir(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "Foo_3840x2160.jpg")

	path, err := Write(New("Spotlight").Set(KeyTitle, "Foo"), image)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "metadata", "Foo_3840x2160.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Title           : Foo\n")

	entries, err := os.ReadDir(filepath.Join(dir, "metadata"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestWriteFailsOnUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	_, err := Write(New("Bing"), filepath.Join(dir, "x.jpg"))
	require.Error(t, err)
}
