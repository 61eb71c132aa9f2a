package extractor

// DegreePattern 学位正则，按原样编译，大小写等标志写在 Pattern 内
type DegreePattern struct {
	Label   string
	Pattern string
}

// SkillTerm 技能词条
// Pattern 为空时按 Name 做大小写不敏感的字面子串匹配
// WordBoundary 为 true 时要求词条两侧不是字母数字
type SkillTerm struct {
	Name         string
	Pattern      string
	WordBoundary bool
}

// Vocabulary 学位与技能词表，顺序决定输出顺序
type Vocabulary struct {
	Degrees []DegreePattern
	Skills  []SkillTerm
}

// 缩写学位不区分大小写，但单字母加 A/E 的形式要么带点要么全大写，避免匹配到 "be" "me" 这类普通单词
var defaultDegrees = []DegreePattern{
	{Label: "Bachelor", Pattern: `(?i)Bachelor(?:'s)?\s+(?:of\s+)?(?:Science|Arts|Engineering|Technology|Business|Commerce)?`},
	{Label: "Master", Pattern: `(?i)Master(?:'s)?\s+(?:of\s+)?(?:Science|Arts|Engineering|Technology|Business|Commerce)?`},
	{Label: "Bachelor (abbr.)", Pattern: `\b(?:(?i:B\.?(?:Sc|Tech|Com|B\.?A)|B\.[AE])|B[AE])\b\.?`},
	{Label: "Master (abbr.)", Pattern: `\b(?:(?i:M\.?(?:Sc|Tech|Com|B\.?A)|M\.[AE])|M[AE])\b\.?`},
	{Label: "Doctorate", Pattern: `(?i)\bPh\.?D\.?`},
	{Label: "Diploma", Pattern: `(?i)Diploma`},
	{Label: "Associate", Pattern: `(?i)Associate(?:'s)?\s+Degree`},
}

var defaultSkillNames = []string{
	"Python", "Java", "JavaScript", "C++", "SQL", "HTML", "CSS",
	"React", "Angular", "Node.js", "Django", "Flask",
	"Machine Learning", "Data Analysis", "AWS", "Azure", "Docker",
	"Communication", "Leadership", "Project Management", "Teamwork", "Problem Solving",
	"Marketing", "SEO", "Social Media",
	"Accounting", "Financial Analysis", "Excel", "QuickBooks",
	"HR Management", "Recruitment", "Employee Relations",
}

// DefaultVocabulary 内置词表，每次返回新的切片
func DefaultVocabulary() Vocabulary {
	v := Vocabulary{
		Degrees: append([]DegreePattern(nil), defaultDegrees...),
		Skills:  make([]SkillTerm, 0, len(defaultSkillNames)),
	}
	for _, name := range defaultSkillNames {
		v.Skills = append(v.Skills, SkillTerm{Name: name})
	}
	return v
}
