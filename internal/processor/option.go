package processor

import (
	"time"

	"github.com/rs/zerolog"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	Reader    TextReader     // 文档读取
	Extractor FieldExtractor // 字段抽取
	Cache     RecordCache    // 可选，解析结果缓存
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Logger   zerolog.Logger // 日志记录器
	CacheTTL time.Duration  // 缓存有效期
	Workers  int            // 批量解析并发数
}

// NewComponents 按选项组装组件
func NewComponents(opts ...ComponentOpt) *Components {
	c := &Components{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ----- 组件选项 -----

// WithcompReader 设置文档读取组件
func WithcompReader(reader TextReader) ComponentOpt {
	return func(c *Components) {
		c.Reader = reader
	}
}

// WithcompExtractor 设置字段抽取组件
func WithcompExtractor(extractor FieldExtractor) ComponentOpt {
	return func(c *Components) {
		c.Extractor = extractor
	}
}

// WithcompCache 设置解析结果缓存
func WithcompCache(cache RecordCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = cache
	}
}

// ----- 设置选项 -----

// WithsetLogger 设置日志记录器
func WithsetLogger(logger zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = logger
	}
}

// WithsetCacheTTL 设置缓存有效期
func WithsetCacheTTL(ttl time.Duration) SettingOpt {
	return func(s *Settings) {
		if ttl > 0 {
			s.CacheTTL = ttl
		}
	}
}

// WithsetWorkers 设置批量解析并发数
func WithsetWorkers(workers int) SettingOpt {
	return func(s *Settings) {
		if workers > 0 {
			s.Workers = workers
		}
	}
}
