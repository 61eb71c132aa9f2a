package processor

import (
	"context"
	"time"

	"resume-parser-go/internal/types"
)

//
// 文档读取相关接口
//

// TextReader 读取文档全文
type TextReader interface {
	// ReadText 按扩展名解码文件，失败时返回 *parser.DocumentError
	ReadText(ctx context.Context, path string) (string, error)

	// Supports 判断文件扩展名是否受支持
	Supports(path string) bool
}

//
// 字段抽取相关接口
//

// FieldExtractor 从全文中抽取结构化字段
type FieldExtractor interface {
	Extract(ctx context.Context, fileName, text string) *types.ResumeRecord
}

// Fingerprinter 可选接口，返回抽取配置的指纹
// 实现了该接口的抽取器，其指纹会写入缓存键，配置变化后旧缓存自然失效
type Fingerprinter interface {
	Fingerprint() string
}

//
// 缓存相关接口
//

// RecordCache 以文件内容哈希为键缓存解析结果
type RecordCache interface {
	// GetRecord 未命中时返回 nil, nil
	GetRecord(ctx context.Context, key string) (*types.ResumeRecord, error)

	// SetRecord 写入缓存
	SetRecord(ctx context.Context, key string, record *types.ResumeRecord, ttl time.Duration) error
}
