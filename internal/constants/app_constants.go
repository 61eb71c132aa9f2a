package constants

import "time"

const (
	// AppName 服务名，同时用作 tracer 的 service.name 默认值
	AppName = "resume-parser-go"

	// DefaultOutputFile CLI 批量模式默认输出文件
	DefaultOutputFile = "parsed_resumes.json"

	// RecordCacheTTL 解析结果缓存默认有效期
	RecordCacheTTL = 24 * time.Hour

	// RecordObjectContentType MinIO 中记录对象的 Content-Type
	RecordObjectContentType = "application/json"
)
