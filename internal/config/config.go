package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PDF 解析后端
const (
	PDFBackendEino       = "eino"
	PDFBackendLedongthuc = "ledongthuc"
)

// Config 应用程序配置
type Config struct {
	Logger     LoggerConfig     `yaml:"logger"`
	Reader     ReaderConfig     `yaml:"reader"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Batch      BatchConfig      `yaml:"batch"`
	Redis      RedisConfig      `yaml:"redis"`
	MinIO      MinIOConfig      `yaml:"minio"`
	Server     ServerConfig     `yaml:"server"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// ReaderConfig 文档读取配置
type ReaderConfig struct {
	PDFBackend        string `yaml:"pdf_backend"`         // eino 或 ledongthuc
	PDFTimeoutSeconds int    `yaml:"pdf_timeout_seconds"` // 单个PDF解析超时(秒)
}

// RecognizerConfig 命名实体识别(姓名)配置，使用 OpenAI 兼容的聊天接口
type RecognizerConfig struct {
	Enabled        bool    `yaml:"enabled"`
	APIKey         string  `yaml:"api_key"`
	APIURL         string  `yaml:"api_url"` // OpenAI 兼容接口的 base URL
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	PrefixChars    int     `yaml:"prefix_chars"` // 送入识别器的文本前缀长度(字符)
	// 限流与重试，QPM 为 0 时不限流
	QPM             int `yaml:"qpm"`
	MaxRetries      int `yaml:"max_retries"`
	RetryWaitMillis int `yaml:"retry_wait_millis"`
}

// ExtractionConfig 字段抽取的上下文窗口
type ExtractionConfig struct {
	PreviewChars           int `yaml:"preview_chars"`
	EducationContextChars  int `yaml:"education_context_chars"`
	ExperienceContextChars int `yaml:"experience_context_chars"`
}

// DegreePatternConfig 学位正则
type DegreePatternConfig struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

// SkillTermConfig 技能词条；Pattern 为空时按 Name 字面匹配
type SkillTermConfig struct {
	Name         string `yaml:"name"`
	Pattern      string `yaml:"pattern,omitempty"`
	WordBoundary bool   `yaml:"word_boundary"`
}

// VocabularyConfig 学位与技能词表，留空则使用内置默认值
type VocabularyConfig struct {
	Degrees []DegreePatternConfig `yaml:"degrees"`
	Skills  []SkillTermConfig     `yaml:"skills"`
}

// BatchConfig 批量解析配置
type BatchConfig struct {
	Workers int    `yaml:"workers"`
	Output  string `yaml:"output"`
}

// RedisConfig holds configuration for the record cache
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	MaxRetries          int `yaml:"max_retries"`
	// 解析结果缓存有效期(小时)
	RecordTTLHours int `yaml:"record_ttl_hours"`
}

// MinIOConfig MinIO配置结构
type MinIOConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Endpoint         string `yaml:"endpoint"`
	AccessKeyID      string `yaml:"accessKeyID"`
	SecretAccessKey  string `yaml:"secretAccessKey"`
	UseSSL           bool   `yaml:"useSSL"`
	BucketName       string `yaml:"bucketName"`
	Location         string `yaml:"location"`           // 可选，存储桶区域
	Prefix           string `yaml:"prefix"`             // 对象键前缀
	RecordExpireDays int    `yaml:"record_expire_days"` // 记录对象过期天数，0 表示不过期
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address     string   `yaml:"address"`  // 例如 ":8080"
	APIKeys     []string `yaml:"api_keys"` // 非空时启用 X-API-Key 校验
	MaxUploadMB int      `yaml:"max_upload_mb"`
}

// TracingConfig OpenTelemetry 配置
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC 地址，例如 localhost:4317
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoadConfig 从文件加载配置；路径为空时只使用默认值和环境变量
func LoadConfig(configPath string) (*Config, error) {
	cfg := createDefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("配置文件不存在: %s", configPath)
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(cfg *Config) {
	if envKey := os.Getenv("RECOGNIZER_API_KEY"); envKey != "" {
		cfg.Recognizer.APIKey = envKey
	}
	if envURL := os.Getenv("RECOGNIZER_API_URL"); envURL != "" {
		cfg.Recognizer.APIURL = envURL
	}
	if envModel := os.Getenv("RECOGNIZER_MODEL"); envModel != "" {
		cfg.Recognizer.Model = envModel
	}
	if envAddr := os.Getenv("REDIS_ADDRESS"); envAddr != "" {
		cfg.Redis.Address = envAddr
	}
}

// applyDefaults 补齐文件中显式写成零值的字段
func applyDefaults(cfg *Config) {
	def := createDefaultConfig()

	if cfg.Reader.PDFBackend == "" {
		cfg.Reader.PDFBackend = def.Reader.PDFBackend
	}
	cfg.Reader.PDFBackend = strings.ToLower(cfg.Reader.PDFBackend)
	if cfg.Reader.PDFTimeoutSeconds <= 0 {
		cfg.Reader.PDFTimeoutSeconds = def.Reader.PDFTimeoutSeconds
	}
	if cfg.Recognizer.PrefixChars <= 0 {
		cfg.Recognizer.PrefixChars = def.Recognizer.PrefixChars
	}
	if cfg.Recognizer.TimeoutSeconds <= 0 {
		cfg.Recognizer.TimeoutSeconds = def.Recognizer.TimeoutSeconds
	}
	if cfg.Extraction.PreviewChars <= 0 {
		cfg.Extraction.PreviewChars = def.Extraction.PreviewChars
	}
	if cfg.Extraction.EducationContextChars <= 0 {
		cfg.Extraction.EducationContextChars = def.Extraction.EducationContextChars
	}
	if cfg.Extraction.ExperienceContextChars <= 0 {
		cfg.Extraction.ExperienceContextChars = def.Extraction.ExperienceContextChars
	}
	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = def.Batch.Workers
	}
	if cfg.Batch.Output == "" {
		cfg.Batch.Output = def.Batch.Output
	}
	if cfg.Redis.RecordTTLHours <= 0 {
		cfg.Redis.RecordTTLHours = def.Redis.RecordTTLHours
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = def.Server.MaxUploadMB
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = def.Tracing.ServiceName
	}
	if cfg.Tracing.SampleRatio <= 0 || cfg.Tracing.SampleRatio > 1 {
		cfg.Tracing.SampleRatio = def.Tracing.SampleRatio
	}
}

// Validate 检查互相依赖的配置项
func (c *Config) Validate() error {
	switch c.Reader.PDFBackend {
	case PDFBackendEino, PDFBackendLedongthuc:
	default:
		return fmt.Errorf("未知的PDF解析后端: %q", c.Reader.PDFBackend)
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis已启用但未配置address")
	}
	if c.MinIO.Enabled && (c.MinIO.Endpoint == "" || c.MinIO.BucketName == "") {
		return fmt.Errorf("minio已启用但endpoint或bucketName为空")
	}
	for i, d := range c.Vocabulary.Degrees {
		if d.Pattern == "" {
			return fmt.Errorf("vocabulary.degrees[%d] 缺少 pattern", i)
		}
	}
	for i, s := range c.Vocabulary.Skills {
		if s.Name == "" {
			return fmt.Errorf("vocabulary.skills[%d] 缺少 name", i)
		}
	}
	return nil
}

// GetDuration 将秒数转换为 time.Duration，非正数时返回默认值
func GetDuration(seconds int, def time.Duration) time.Duration {
	if seconds <= 0 {
		return def
	}
	return time.Duration(seconds) * time.Second
}

// RecordTTL 解析结果缓存有效期
func (c *RedisConfig) RecordTTL() time.Duration {
	return time.Duration(c.RecordTTLHours) * time.Hour
}

// createDefaultConfig 默认配置，LoadConfig 在其基础上叠加文件内容
func createDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Logger = LoggerConfig{Level: "info", Format: "pretty", TimeFormat: "15:04:05"}
	cfg.Reader = ReaderConfig{PDFBackend: PDFBackendEino, PDFTimeoutSeconds: 30}
	cfg.Recognizer = RecognizerConfig{
		Enabled:         true,
		APIURL:          "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Model:           "qwen-turbo",
		TimeoutSeconds:  20,
		PrefixChars:     500,
		QPM:             60,
		MaxRetries:      2,
		RetryWaitMillis: 1000,
	}
	cfg.Extraction = ExtractionConfig{
		PreviewChars:           500,
		EducationContextChars:  100,
		ExperienceContextChars: 200,
	}
	cfg.Batch = BatchConfig{Workers: 4, Output: "parsed_resumes.json"}
	cfg.Redis = RedisConfig{
		Address:             "localhost:6379",
		PoolSize:            10,
		MinIdleConns:        2,
		DialTimeoutSeconds:  5,
		ReadTimeoutSeconds:  3,
		WriteTimeoutSeconds: 3,
		MaxRetries:          3,
		RecordTTLHours:      24,
	}
	cfg.MinIO = MinIOConfig{
		Endpoint:   "localhost:9000",
		BucketName: "parsed-resumes",
		Prefix:     "records",
	}
	cfg.Server = ServerConfig{Address: ":8080", MaxUploadMB: 20}
	cfg.Tracing = TracingConfig{
		Endpoint:    "localhost:4317",
		Insecure:    true,
		ServiceName: "resume-parser-go",
		SampleRatio: 1,
	}
	return cfg
}
