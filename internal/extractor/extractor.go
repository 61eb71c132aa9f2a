package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"resume-parser-go/internal/agent"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// 按顺序尝试，第一个有匹配的层级胜出
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\d{10}`),
	}

	// 取第一个关键字之后、下一个终止关键字之前的最短片段
	experienceSection = regexp.MustCompile(`(?is)(?:experience|employment|work history)(.*?)(?:education|skills|certifications|$)`)
	yearRange         = regexp.MustCompile(`(?i)(\d{4})\s*[-–—]\s*(\d{4}|Present|Current)`)
)

type compiledDegree struct {
	label string
	re    *regexp.Regexp
}

type compiledSkill struct {
	name string
	re   *regexp.Regexp
}

// Extractors 六个字段抽取器，构建后只读，可并发使用
type Extractors struct {
	degrees    []compiledDegree
	skills     []compiledSkill
	recognizer agent.EntityRecognizer
	logger     zerolog.Logger

	previewChars     int
	recognizerPrefix int
	educationRadius  int
	experienceRadius int

	fingerprint string
}

// Option Extractors 的配置选项
type Option func(*Extractors)

// WithRecognizer 注入命名实体识别器
func WithRecognizer(r agent.EntityRecognizer) Option {
	return func(e *Extractors) {
		if r != nil {
			e.recognizer = r
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Extractors) {
		e.logger = logger
	}
}

// WithPreviewChars 预览文本长度(字符)
func WithPreviewChars(n int) Option {
	return func(e *Extractors) {
		if n > 0 {
			e.previewChars = n
		}
	}
}

// WithRecognizerPrefix 送入识别器的前缀长度(字符)
func WithRecognizerPrefix(n int) Option {
	return func(e *Extractors) {
		if n > 0 {
			e.recognizerPrefix = n
		}
	}
}

// WithEducationContext 学位匹配前后各保留的字符数
func WithEducationContext(n int) Option {
	return func(e *Extractors) {
		if n >= 0 {
			e.educationRadius = n
		}
	}
}

// WithExperienceContext 年份区间前后各保留的字符数
func WithExperienceContext(n int) Option {
	return func(e *Extractors) {
		if n >= 0 {
			e.experienceRadius = n
		}
	}
}

// New 编译词表并创建抽取器，词表中的正则无效时返回错误
func New(vocab Vocabulary, options ...Option) (*Extractors, error) {
	e := &Extractors{
		recognizer:       agent.NullRecognizer{},
		logger:           zerolog.Nop(),
		previewChars:     500,
		recognizerPrefix: 500,
		educationRadius:  100,
		experienceRadius: 200,
	}
	for _, option := range options {
		option(e)
	}

	for _, d := range vocab.Degrees {
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("学位正则 %q 无效: %w", d.Label, err)
		}
		e.degrees = append(e.degrees, compiledDegree{label: d.Label, re: re})
	}

	for _, s := range vocab.Skills {
		re, err := compileSkill(s)
		if err != nil {
			return nil, fmt.Errorf("技能词条 %q 无效: %w", s.Name, err)
		}
		e.skills = append(e.skills, compiledSkill{name: s.Name, re: re})
	}
	e.fingerprint = e.computeFingerprint()
	return e, nil
}

// Fingerprint 抽取配置(词表、窗口、识别器)的指纹，用作缓存键的一部分
func (e *Extractors) Fingerprint() string {
	return e.fingerprint
}

func (e *Extractors) computeFingerprint() string {
	h := xxhash.New()
	for _, d := range e.degrees {
		fmt.Fprintf(h, "d\x00%s\x00%s\n", d.label, d.re.String())
	}
	for _, s := range e.skills {
		fmt.Fprintf(h, "s\x00%s\x00%s\n", s.name, s.re.String())
	}
	fmt.Fprintf(h, "w\x00%d\x00%d\x00%d\x00%d\n",
		e.previewChars, e.recognizerPrefix, e.educationRadius, e.experienceRadius)
	fmt.Fprintf(h, "r\x00%T", e.recognizer)
	if fp, ok := e.recognizer.(interface{ Fingerprint() string }); ok {
		fmt.Fprintf(h, "\x00%s", fp.Fingerprint())
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func compileSkill(s SkillTerm) (*regexp.Regexp, error) {
	if s.Pattern != "" {
		return regexp.Compile(s.Pattern)
	}
	term := regexp.QuoteMeta(s.Name)
	if s.WordBoundary {
		// RE2 没有环视，用非字母数字或首尾代替，词条以符号结尾时(C++)同样适用
		term = `(?:^|[^\pL\pN_])` + term + `(?:[^\pL\pN_]|$)`
	}
	return regexp.Compile(`(?i)` + term)
}

// Extract 对全文运行所有抽取器并组装记录
func (e *Extractors) Extract(ctx context.Context, fileName, text string) *types.ResumeRecord {
	record := &types.ResumeRecord{
		FileName:       fileName,
		Name:           e.Name(ctx, text),
		Email:          e.Email(text),
		Phone:          e.Phone(text),
		Education:      e.Education(text),
		Skills:         e.Skills(text),
		Experience:     e.Experience(text),
		RawTextPreview: e.Preview(text),
	}

	e.logger.Debug().
		Str("file", fileName).
		Str("email", tracing.MaskPIIPtr(record.Email)).
		Str("phone", tracing.MaskPIIPtr(record.Phone)).
		Int("education", countReal(record.Education)).
		Int("skills", countReal(record.Skills)).
		Int("experience", countReal(record.Experience)).
		Msg("字段抽取完成")
	return record
}

// Email 返回第一个邮箱地址
func (e *Extractors) Email(text string) *string {
	if m := emailPattern.FindString(text); m != "" {
		return &m
	}
	return nil
}

// Phone 依次尝试各层级电话格式，返回第一个命中层级的第一个匹配
func (e *Extractors) Phone(text string) *string {
	for _, re := range phonePatterns {
		if m := re.FindString(text); m != "" {
			return &m
		}
	}
	return nil
}

// Name 优先取识别器在文本前缀中找到的第一个人名，其次取第一个非空行
func (e *Extractors) Name(ctx context.Context, text string) string {
	entities, err := e.recognizer.Recognize(ctx, prefix(text, e.recognizerPrefix))
	if err != nil {
		e.logger.Warn().Err(err).Msg("实体识别失败，使用首行作为姓名")
	}
	for _, ent := range entities {
		if ent.Label == agent.LabelPerson && strings.TrimSpace(ent.Text) != "" {
			return strings.TrimSpace(ent.Text)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return types.UnknownName
}

// Education 每个学位正则的每次出现都产出一段上下文，按词表顺序，不去重
func (e *Extractors) Education(text string) []string {
	var out []string
	for _, d := range e.degrees {
		for _, loc := range d.re.FindAllStringIndex(text, -1) {
			if snippet := window(text, loc[0], loc[1], e.educationRadius); snippet != "" {
				out = append(out, snippet)
			}
		}
	}
	return types.OrSentinel(out)
}

// Skills 返回文本中出现过的词条名，按词表顺序
func (e *Extractors) Skills(text string) []string {
	var out []string
	for _, s := range e.skills {
		if s.re.MatchString(text) {
			out = append(out, s.name)
		}
	}
	return types.OrSentinel(out)
}

// Experience 在第一个经历段落内查找年份区间，上下文不越出该段落
func (e *Extractors) Experience(text string) []string {
	loc := experienceSection.FindStringSubmatchIndex(text)
	if loc == nil || loc[2] < 0 {
		return types.OrSentinel(nil)
	}
	section := text[loc[2]:loc[3]]

	var out []string
	for _, m := range yearRange.FindAllStringIndex(section, -1) {
		if snippet := window(section, m[0], m[1], e.experienceRadius); snippet != "" {
			out = append(out, snippet)
		}
	}
	return types.OrSentinel(out)
}

// Preview 文本的前 N 个字符
func (e *Extractors) Preview(text string) string {
	return prefix(text, e.previewChars)
}

func countReal(items []string) int {
	if types.IsSentinel(items) {
		return 0
	}
	return len(items)
}
