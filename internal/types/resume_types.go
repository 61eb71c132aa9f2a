package types

// SentinelNotSpecified 列表字段没有任何匹配时的占位值
const SentinelNotSpecified = "Not specified"

// UnknownName 无法识别姓名时的默认值
const UnknownName = "Unknown"

// ResumeRecord 单份简历的结构化抽取结果
// 列表字段要么至少包含一个真实匹配，要么恰好为 ["Not specified"]
type ResumeRecord struct {
	FileName       string   `json:"file_name"`
	Name           string   `json:"name"`
	Email          *string  `json:"email"`
	Phone          *string  `json:"phone"`
	Education      []string `json:"education"`
	Skills         []string `json:"skills"`
	Experience     []string `json:"experience"`
	RawTextPreview string   `json:"raw_text_preview"`
}

// OrSentinel 空列表时返回只含占位值的新列表
func OrSentinel(items []string) []string {
	if len(items) == 0 {
		return []string{SentinelNotSpecified}
	}
	return items
}

// IsSentinel 判断列表是否为占位结果
func IsSentinel(items []string) bool {
	return len(items) == 1 && items[0] == SentinelNotSpecified
}

// Clone 返回记录的深拷贝，缓存命中后改写 FileName 时使用
func (r *ResumeRecord) Clone() *ResumeRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Email != nil {
		v := *r.Email
		c.Email = &v
	}
	if r.Phone != nil {
		v := *r.Phone
		c.Phone = &v
	}
	c.Education = append([]string(nil), r.Education...)
	c.Skills = append([]string(nil), r.Skills...)
	c.Experience = append([]string(nil), r.Experience...)
	return &c
}
