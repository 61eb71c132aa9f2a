package processor

import (
	"resume-parser-go/internal/agent"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/extractor"

	"github.com/rs/zerolog"
)

// VocabularyFromConfig 配置中的词表覆盖内置默认值，学位与技能分别判断
func VocabularyFromConfig(cfg *config.VocabularyConfig) extractor.Vocabulary {
	vocab := extractor.DefaultVocabulary()
	if len(cfg.Degrees) > 0 {
		vocab.Degrees = make([]extractor.DegreePattern, 0, len(cfg.Degrees))
		for _, d := range cfg.Degrees {
			vocab.Degrees = append(vocab.Degrees, extractor.DegreePattern{Label: d.Label, Pattern: d.Pattern})
		}
	}
	if len(cfg.Skills) > 0 {
		vocab.Skills = make([]extractor.SkillTerm, 0, len(cfg.Skills))
		for _, s := range cfg.Skills {
			vocab.Skills = append(vocab.Skills, extractor.SkillTerm{Name: s.Name, Pattern: s.Pattern, WordBoundary: s.WordBoundary})
		}
	}
	return vocab
}

// BuildExtractors 根据配置构建字段抽取器
func BuildExtractors(cfg *config.Config, recognizer agent.EntityRecognizer, logger zerolog.Logger) (*extractor.Extractors, error) {
	return extractor.New(VocabularyFromConfig(&cfg.Vocabulary),
		extractor.WithRecognizer(recognizer),
		extractor.WithLogger(logger),
		extractor.WithPreviewChars(cfg.Extraction.PreviewChars),
		extractor.WithRecognizerPrefix(cfg.Recognizer.PrefixChars),
		extractor.WithEducationContext(cfg.Extraction.EducationContextChars),
		extractor.WithExperienceContext(cfg.Extraction.ExperienceContextChars),
	)
}
