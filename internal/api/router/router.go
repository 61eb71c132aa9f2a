package router

import (
	"context"
	"crypto/subtle"

	"resume-parser-go/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// APIKeyHeader 调用方携带密钥的请求头
const APIKeyHeader = "X-API-Key"

// RegisterRoutes 注册 API 路由；apiKeys 非空时解析接口需要 X-API-Key
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, apiKeys []string) {
	api := h.Group("/api/v1")

	// 添加健康检查
	api.GET("/health", resumeHandler.HandleHealth)

	resumes := api.Group("/resumes")
	if len(apiKeys) > 0 {
		resumes.Use(NewAPIKeyAuth(apiKeys))
	}
	resumes.POST("/parse", resumeHandler.HandleParse)
}

// NewAPIKeyAuth 基于 keyauth 的密钥校验中间件
func NewAPIKeyAuth(apiKeys []string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+APIKeyHeader, ""),
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			for _, k := range apiKeys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, nil
		}),
		keyauth.WithErrorHandler(func(_ context.Context, c *app.RequestContext, _ error) {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "无效或缺失的API密钥"})
		}),
	)
}
