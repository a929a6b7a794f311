package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceTag(t *testing.T) {
	assert.Equal(t, "linkedin", SourceTag("/data/linkedin_2026-08-24.json"))
	assert.Equal(t, "indeed", SourceTag("indeed_batch_7.json"))
	assert.Equal(t, "wellfound", SourceTag("Wellfound_1.json"))
	assert.Equal(t, "plain", SourceTag("plain.json"))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestBatchesDiscoversAndGroups(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "linkedin_1.json",
		`[{"url": "https://li/1", "title": "Go Engineer", "company": "Acme"}]`)
	writeFile(t, dir, "linkedin_2.json",
		`[{"url": "https://li/2", "title": "Platform Engineer", "company": "Globex"}]`)
	writeFile(t, dir, "indeed_1.json",
		`{"jobs": [{"url": "https://in/1", "title": "SRE", "company": "Initech"}]}`)
	writeFile(t, dir, "notes.txt", "not a record file")

	batches, err := NewFileSource(dir).Batches(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Len(t, batches["linkedin"], 2)
	require.Len(t, batches["indeed"], 1)
	assert.Equal(t, "SRE", batches["indeed"][0].Title)
}

func TestBatchesSkipsUndecodableFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "linkedin_1.json", `{"unexpected": "shape"}`)
	writeFile(t, dir, "indeed_1.json",
		`[{"url": "https://in/1", "title": "SRE", "company": "Initech"}]`)

	batches, err := NewFileSource(dir).Batches(context.Background())
	require.NoError(t, err)
	assert.Len(t, batches, 1)
	assert.Len(t, batches["indeed"], 1)
}

func TestBatchesExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greenhouse_1.json",
		`[{"url": "https://gh/1", "title": "Go Engineer", "company": "Acme"}]`)
	writeFile(t, dir, "linkedin_1.json",
		`[{"url": "https://li/1", "title": "Go Engineer", "company": "Acme"}]`)

	fs := &FileSource{Paths: []string{filepath.Join(dir, "greenhouse_1.json")}}
	batches, err := fs.Batches(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Len(t, batches["greenhouse"], 1)
}
