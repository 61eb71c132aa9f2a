package main

import (
	"context"
	"errors"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
)

// runParse 批量解析命令行给出的文件和目录
// 有文档被跳过时仍返回 0；没有输入、没有任何记录或输出文件写入失败时返回 1
func runParse(ctx context.Context, cfg *config.Config, p *processor.ResumeParser, st *storage.Storage, args []string) int {
	inputs, err := processor.CollectInputs(args, p.Supports)
	if err != nil {
		if errors.Is(err, processor.ErrNoInputs) {
			logger.Error().Strs("args", args).Msg("没有可解析的输入文件")
		} else {
			logger.Error().Err(err).Msg("收集输入文件失败")
		}
		return 1
	}

	result := p.ParseBatch(ctx, inputs)
	for _, f := range result.Failures {
		logger.Warn().Str("file", f.Path).Err(f.Err).Msg("已跳过")
	}

	exitCode := 0
	for i, sink := range st.Sinks(cfg.Batch.Output) {
		if err := sink.WriteRecords(ctx, result.RunID, result.Records); err != nil {
			logger.Error().Err(err).Msg("写入解析结果失败")
			// 第一个输出是本地文件
			if i == 0 {
				exitCode = 1
			}
		}
	}

	logger.Info().
		Str("run_id", result.RunID).
		Int("inputs", len(inputs)).
		Int("records", len(result.Records)).
		Int("skipped", len(result.Failures)).
		Str("output", cfg.Batch.Output).
		Dur("elapsed", result.Elapsed).
		Msg("解析完成")

	if len(result.Records) == 0 {
		return 1
	}
	return exitCode
}
