package main

import (
	"context"
	"fmt"
	"os"

	"resume-parser-go/internal/agent"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"

	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"
)

var version = "1.0.0" //nolint:gochecknoglobals

// 命令行参数定义
var (
	configPath string
	outputPath string
	workers    int
	command    string
)

func main() {
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径，留空使用默认配置")
	pflag.StringVarP(&outputPath, "output", "o", "", "输出JSON文件路径 (默认 "+constants.DefaultOutputFile+")")
	pflag.IntVarP(&workers, "workers", "w", 0, "并发解析的文档数，覆盖配置")
	pflag.StringVar(&command, "cmd", "parse", "执行的命令: parse=批量解析文件, serve=启动HTTP服务")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "用法: resumeparser [flags] <file|dir>...\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	os.Exit(run(pflag.Args()))
}

func run(args []string) int {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		return 1
	}
	if outputPath != "" {
		cfg.Batch.Output = outputPath
	}
	if workers > 0 {
		cfg.Batch.Workers = workers
	}
	initLogger(cfg.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, &cfg.Tracing, version)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化链路追踪失败，继续运行")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("关闭链路追踪失败")
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg, logger.Component("storage"))
	if err != nil {
		logger.Error().Err(err).Msg("初始化存储失败")
		return 1
	}
	defer storageManager.Close()

	resumeParser, err := buildParser(ctx, cfg, storageManager)
	if err != nil {
		logger.Error().Err(err).Msg("初始化解析器失败")
		return 1
	}

	switch command {
	case "parse":
		return runParse(ctx, cfg, resumeParser, storageManager, args)
	case "serve":
		return runServe(cfg, resumeParser)
	default:
		fmt.Fprintf(os.Stderr, "错误: 未知命令 '%s'。支持的命令: parse, serve\n", command)
		pflag.Usage()
		return 1
	}
}

// buildParser 组装读取器、识别器、抽取器和可选的缓存
func buildParser(ctx context.Context, cfg *config.Config, storageManager *storage.Storage) (*processor.ResumeParser, error) {
	reader, err := processor.BuildDocumentReader(ctx, &cfg.Reader, logger.Component("reader"))
	if err != nil {
		return nil, fmt.Errorf("创建文档读取器失败: %w", err)
	}

	recognizer := agent.BuildRecognizer(&cfg.Recognizer, logger.Component("recognizer"))
	extractors, err := processor.BuildExtractors(cfg, recognizer, logger.Component("extractor"))
	if err != nil {
		return nil, fmt.Errorf("创建字段抽取器失败: %w", err)
	}

	compOpts := []processor.ComponentOpt{
		processor.WithcompReader(reader),
		processor.WithcompExtractor(extractors),
	}
	if storageManager.Redis != nil {
		compOpts = append(compOpts, processor.WithcompCache(storageManager.Redis))
	}
	return processor.NewResumeParser(processor.NewComponents(compOpts...), nil,
		processor.WithsetLogger(logger.Component("processor")),
		processor.WithsetWorkers(cfg.Batch.Workers),
		processor.WithsetCacheTTL(cfg.Redis.RecordTTL()),
	)
}

func initLogger(cfg config.LoggerConfig) {
	logger.Init(logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		TimeFormat:   cfg.TimeFormat,
		ReportCaller: cfg.ReportCaller,
	})

	// 设置 Hertz 的 glog
	glog.SetLogger(hertzadapter.From(logger.Logger))
	switch cfg.Level {
	case "debug":
		glog.SetLevel(glog.LevelDebug)
	case "warn":
		glog.SetLevel(glog.LevelWarn)
	case "error":
		glog.SetLevel(glog.LevelError)
	default:
		glog.SetLevel(glog.LevelInfo)
	}
}
