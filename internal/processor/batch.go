package processor

import (
	"context"
	"time"

	"resume-parser-go/internal/types"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// BatchResult 一次批量解析的结果
type BatchResult struct {
	RunID    string                // 本次运行的唯一标识
	Records  []*types.ResumeRecord // 成功的记录，顺序与输入一致
	Failures []Failure             // 被跳过的文档，顺序与输入一致
	Elapsed  time.Duration
}

// ParseBatch 以有限并发解析一组文件
// 单个文档失败不会中断其他文档，Workers 为 1 时按输入顺序逐个处理
func (p *ResumeParser) ParseBatch(ctx context.Context, paths []string) *BatchResult {
	start := time.Now()
	runID, err := uuid.NewV4()
	if err != nil {
		p.settings.Logger.Warn().Err(err).Msg("生成运行ID失败")
	}

	ctx, span := tracer.Start(ctx, "ParseBatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", runID.String()),
		attribute.Int("batch.size", len(paths)),
		attribute.Int("batch.workers", p.settings.Workers),
	)

	records := make([]*types.ResumeRecord, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.settings.Workers)
	for i, path := range paths {
		g.Go(func() error {
			records[i], errs[i] = p.Parse(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{RunID: runID.String()}
	for i, path := range paths {
		if errs[i] != nil {
			result.Failures = append(result.Failures, Failure{Path: path, Err: errs[i]})
			continue
		}
		result.Records = append(result.Records, records[i])
	}
	result.Elapsed = time.Since(start)

	span.SetAttributes(
		attribute.Int("batch.records", len(result.Records)),
		attribute.Int("batch.failures", len(result.Failures)),
	)
	p.settings.Logger.Info().
		Str("run_id", result.RunID).
		Int("records", len(result.Records)).
		Int("skipped", len(result.Failures)).
		Dur("elapsed", result.Elapsed).
		Msg("批量解析完成")
	return result
}
