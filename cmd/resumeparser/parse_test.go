package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSetup(t *testing.T) (*config.Config, *storage.Storage) {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Recognizer.Enabled = false
	cfg.Redis.Enabled = false
	cfg.MinIO.Enabled = false
	cfg.Batch.Output = filepath.Join(t.TempDir(), "out.json")

	st, err := storage.NewStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	return cfg, st
}

func TestRunParseWritesRecords(t *testing.T) {
	cfg, st := newTestSetup(t)
	p, err := buildParser(context.Background(), cfg, st)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("Bob Smith\nSQL"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Alice Jones\nPython"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.docx"), []byte("not a zip"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.md"), []byte("# md"), 0o600))

	code := runParse(context.Background(), cfg, p, st, []string{dir})
	assert.Equal(t, 0, code, "部分文档被跳过时仍应成功退出")

	data, err := os.ReadFile(cfg.Batch.Output)
	require.NoError(t, err)
	var records []types.ResumeRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "a.txt", records[0].FileName, "按文件名排序")
	assert.Equal(t, "Alice Jones", records[0].Name)
	assert.Equal(t, []string{"SQL"}, records[1].Skills)
}

func TestRunParseNoInputs(t *testing.T) {
	cfg, st := newTestSetup(t)
	p, err := buildParser(context.Background(), cfg, st)
	require.NoError(t, err)

	assert.Equal(t, 1, runParse(context.Background(), cfg, p, st, nil))
	assert.Equal(t, 1, runParse(context.Background(), cfg, p, st, []string{t.TempDir()}))
}

func TestRunParseAllSkipped(t *testing.T) {
	cfg, st := newTestSetup(t)
	p, err := buildParser(context.Background(), cfg, st)
	require.NoError(t, err)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	assert.Equal(t, 1, runParse(context.Background(), cfg, p, st, []string{empty}))
	data, err := os.ReadFile(cfg.Batch.Output)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data), "没有记录时仍写出空数组")
}
