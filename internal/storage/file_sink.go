package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"resume-parser-go/internal/types"
)

// RecordSink 批量解析结果的去向
type RecordSink interface {
	WriteRecords(ctx context.Context, runID string, records []*types.ResumeRecord) error
}

// FileSink 把全部记录写成一个 JSON 数组文件
type FileSink struct {
	Path string
}

var _ RecordSink = (*FileSink)(nil)

// NewFileSink 创建文件输出
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

// WriteRecords 覆盖写入目标文件；没有记录时写入空数组
func (s *FileSink) WriteRecords(_ context.Context, _ string, records []*types.ResumeRecord) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("创建输出文件 %s 失败: %w", s.Path, err)
	}
	if err := EncodeRecords(f, records); err != nil {
		f.Close()
		return fmt.Errorf("写入输出文件 %s 失败: %w", s.Path, err)
	}
	return f.Close()
}

// EncodeRecords 以两格缩进输出 JSON 数组，非 ASCII 字符原样保留
func EncodeRecords(w io.Writer, records []*types.ResumeRecord) error {
	if records == nil {
		records = []*types.ResumeRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
