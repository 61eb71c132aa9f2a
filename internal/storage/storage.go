package storage

import (
	"context"
	"errors"
	"fmt"

	"resume-parser-go/internal/config"

	"github.com/rs/zerolog"
)

// Storage 存储管理器，聚合所有可选的外部存储
type Storage struct {
	// 键值存储，解析结果缓存
	Redis *Redis

	// 对象存储，解析结果归档
	MinIO *MinIO
}

// NewStorage 按配置初始化已启用的存储，任一已启用的组件初始化失败即返回错误
func NewStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var err error

	if cfg.Redis.Enabled {
		storage.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("初始化Redis失败: %w", err)
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("Redis客户端初始化成功")
	} else {
		logger.Debug().Msg("Redis未启用, 跳过初始化")
	}

	if cfg.MinIO.Enabled {
		storage.MinIO, err = NewMinIO(ctx, &cfg.MinIO, logger.With().Str("component", "minio").Logger())
		if err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("初始化MinIO失败: %w", err)
		}
	} else {
		logger.Debug().Msg("MinIO未启用, 跳过初始化")
	}

	return storage, nil
}

// Sinks 返回批量结果的输出目标：文件始终写入，MinIO 启用时追加
func (s *Storage) Sinks(outputPath string) []RecordSink {
	sinks := []RecordSink{NewFileSink(outputPath)}
	if s != nil && s.MinIO != nil {
		sinks = append(sinks, s.MinIO)
	}
	return sinks
}

// Close 关闭所有连接
func (s *Storage) Close() error {
	var errs []error
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭Redis失败: %w", err))
		}
	}
	return errors.Join(errs...)
}
