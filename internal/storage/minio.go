package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var minioTracer = otel.Tracer("resume-parser-go/storage/minio")

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadFile 上传文件到指定路径
	UploadFile(ctx context.Context, objectName string, reader io.Reader, fileSize int64, contentType string) (string, error)
}

// 确保MinIO实现了ObjectStorage和RecordSink接口
var (
	_ ObjectStorage = (*MinIO)(nil)
	_ RecordSink    = (*MinIO)(nil)
)

// MinIO 提供对象存储功能，每条解析记录保存为一个JSON对象
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	bucket string
	logger zerolog.Logger
}

// NewMinIO 创建MinIO客户端并确保存储桶存在
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig, logger zerolog.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	logger.Debug().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("初始化MinIO客户端")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client: client,
		cfg:    cfg,
		bucket: cfg.BucketName,
		logger: logger,
	}

	if err := m.ensureBucketExists(ctx, m.bucket, cfg.Location); err != nil {
		return nil, err
	}

	// 设置生命周期规则
	if cfg.RecordExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.bucket, "expire-parsed-records", cfg.RecordExpireDays); err != nil {
			logger.Warn().Err(err).Str("bucket", m.bucket).Msg("设置存储桶生命周期失败")
		}
	}

	logger.Info().Str("endpoint", cfg.Endpoint).Str("bucket", m.bucket).Msg("MinIO客户端初始化成功")
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	m.logger.Info().Str("bucket", bucketName).Msg("存储桶不存在，正在创建")
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
	}
	return nil
}

// setupBucketLifecycle 为指定存储桶设置过期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, lc)
}

// UploadFile 上传文件到配置的存储桶
func (m *MinIO) UploadFile(ctx context.Context, objectName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, fileSize, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传对象 %s 到存储桶 %s 失败: %w", objectName, m.bucket, err)
	}
	return objectName, nil
}

// RecordObjectName 记录对象的键: {prefix}/{runID}/{序号}_{文件名}.json
// 序号避免不同目录下同名文件互相覆盖
func RecordObjectName(prefix, runID string, index int, fileName string) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	base = strings.NewReplacer("/", "_", "\\", "_").Replace(base)
	return path.Join(prefix, runID, fmt.Sprintf("%04d_%s.json", index, base))
}

// WriteRecords 把一次运行的记录逐条上传，遇到第一个错误即返回
func (m *MinIO) WriteRecords(ctx context.Context, runID string, records []*types.ResumeRecord) error {
	ctx, span := minioTracer.Start(ctx, "MinIO.WriteRecords")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.String("bucket", m.bucket),
		attribute.Int("records", len(records)),
	)

	for i, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeInternal)
			return fmt.Errorf("记录序列化失败: %w", err)
		}
		objectName := RecordObjectName(m.cfg.Prefix, runID, i, record.FileName)
		if _, err := m.UploadFile(ctx, objectName, bytes.NewReader(payload), int64(len(payload)), constants.RecordObjectContentType); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
			return err
		}
	}

	m.logger.Info().Str("run_id", runID).Int("records", len(records)).Str("bucket", m.bucket).Msg("解析记录已上传到MinIO")
	return nil
}
