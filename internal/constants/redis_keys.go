package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"

	// EntityRecord 解析结果实体
	EntityRecord = "record"

	// KeyResumeRecord 按抽取配置指纹和文件内容MD5缓存的解析结果 (STRING, JSON)
	// 格式: app:resume:record:{fingerprint}:{md5}
	KeyResumeRecord = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityRecord + ":%s:%s"
)
