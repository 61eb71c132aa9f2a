package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"RECOGNIZER_API_KEY", "RECOGNIZER_API_URL", "RECOGNIZER_MODEL", "REDIS_ADDRESS"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "无法写入临时配置文件")
	return configPath
}

// TestLoadConfigDefaults 验证不提供配置文件时返回完整的默认配置
func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, PDFBackendEino, cfg.Reader.PDFBackend)
	assert.Equal(t, 500, cfg.Recognizer.PrefixChars)
	assert.Equal(t, 500, cfg.Extraction.PreviewChars)
	assert.Equal(t, 100, cfg.Extraction.EducationContextChars)
	assert.Equal(t, 200, cfg.Extraction.ExperienceContextChars)
	assert.Equal(t, "parsed_resumes.json", cfg.Batch.Output)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.False(t, cfg.Redis.Enabled, "默认不启用redis缓存")
	assert.False(t, cfg.MinIO.Enabled, "默认不启用minio")
	assert.Empty(t, cfg.Vocabulary.Degrees, "默认词表由抽取器内置提供")
}

// TestLoadConfigFromFile 验证文件内容覆盖默认值，未出现的字段保持默认
func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
reader:
  pdf_backend: LEDONGTHUC
recognizer:
  enabled: false
  model: "qwen-plus"
batch:
  workers: 8
vocabulary:
  skills:
    - name: "Go"
      word_boundary: true
    - name: "Kubernetes"
  degrees:
    - label: "MBA"
      pattern: '\bMBA\b'
server:
  api_keys: ["k1", "k2"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err, "加载合法配置不应返回错误")

	assert.Equal(t, PDFBackendLedongthuc, cfg.Reader.PDFBackend, "后端名称应转为小写")
	assert.False(t, cfg.Recognizer.Enabled)
	assert.Equal(t, "qwen-plus", cfg.Recognizer.Model)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, "parsed_resumes.json", cfg.Batch.Output, "未配置的字段应保留默认值")
	require.Len(t, cfg.Vocabulary.Skills, 2)
	assert.Equal(t, SkillTermConfig{Name: "Go", WordBoundary: true}, cfg.Vocabulary.Skills[0])
	require.Len(t, cfg.Vocabulary.Degrees, 1)
	assert.Equal(t, "MBA", cfg.Vocabulary.Degrees[0].Label)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
}

// TestLoadConfigEnvOverride 验证环境变量优先于文件
func TestLoadConfigEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECOGNIZER_API_KEY", "sk-env")
	t.Setenv("RECOGNIZER_MODEL", "env-model")
	t.Setenv("REDIS_ADDRESS", "redis:6380")

	path := writeConfig(t, `
recognizer:
  api_key: "sk-file"
  model: "file-model"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.Recognizer.APIKey)
	assert.Equal(t, "env-model", cfg.Recognizer.Model)
	assert.Equal(t, "redis:6380", cfg.Redis.Address)
}

func TestLoadConfigZeroValuesFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
extraction:
  preview_chars: 0
  education_context_chars: -1
batch:
  workers: 0
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Extraction.PreviewChars)
	assert.Equal(t, 100, cfg.Extraction.EducationContextChars)
	assert.Equal(t, 4, cfg.Batch.Workers)
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "配置文件不存在时应返回错误")

	_, err = LoadConfig(writeConfig(t, "reader: [not a map"))
	assert.Error(t, err, "YAML语法错误时应返回错误")

	_, err = LoadConfig(writeConfig(t, "reader:\n  pdf_backend: tika\n"))
	assert.ErrorContains(t, err, "未知的PDF解析后端")

	_, err = LoadConfig(writeConfig(t, "minio:\n  enabled: true\n  bucketName: \"\"\n"))
	assert.Error(t, err, "启用minio但缺少bucket时应返回错误")

	_, err = LoadConfig(writeConfig(t, "vocabulary:\n  degrees:\n    - label: X\n"))
	assert.ErrorContains(t, err, "缺少 pattern")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, GetDuration(3, time.Minute))
	assert.Equal(t, time.Minute, GetDuration(0, time.Minute))
	assert.Equal(t, time.Minute, GetDuration(-5, time.Minute))

	rc := RedisConfig{RecordTTLHours: 2}
	assert.Equal(t, 2*time.Hour, rc.RecordTTL())
}
