package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docintel/internal/domain"
	"docintel/mocks"
)

func TestReadSource_LocalFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(p, []byte("png-bytes"), 0o600))

	data, name, err := readSource(context.Background(), nil, p)

	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "scan.png", name)
}

func TestReadSource_S3(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "docs", "in/2024/scan.pdf").Return([]byte("%PDF-"), nil)

	data, name, err := readSource(context.Background(), storage, "s3://docs/in/2024/scan.pdf")

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-"), data)
	assert.Equal(t, "scan.pdf", name)
}

func TestReadSource_S3Errors(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "docs", "missing.pdf").Return(nil, errors.New("NoSuchKey"))

	_, _, err := readSource(context.Background(), storage, "s3://docs")
	assert.ErrorContains(t, err, "invalid s3 url")

	_, _, err = readSource(context.Background(), storage, "s3://docs/missing.pdf")
	assert.ErrorContains(t, err, "NoSuchKey")
}

func TestWriteJSON(t *testing.T) {
	res := &domain.DocumentResult{ID: uuid.New(), SourceName: "scan.png", Status: domain.StatusCompleted}

	var buf bytes.Buffer
	require.NoError(t, writeJSON(res, "", &buf))
	var got domain.DocumentResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, res.ID, got.ID)

	out := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, writeJSON(res, out, &buf))
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"source_name": "scan.png"`)
}

func TestProcessCommand_RequiresPath(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"process"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	assert.Error(t, err)
}
