package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/processor"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
)

// maxRequestBodySize Hertz 层的请求体上限
// 超过上传上限但不超过该值的请求由处理器返回 JSON 413，更大的请求由 Hertz 直接拒绝
func maxRequestBodySize(maxUploadMB int) int {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return (2*maxUploadMB + 1) * 1024 * 1024
}

// newServer 创建带链路追踪和请求日志的 Hertz 实例并注册路由
func newServer(cfg *config.Config, p handler.ResumeParser) *server.Hertz {
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(maxRequestBodySize(cfg.Server.MaxUploadMB)),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, handler.NewResumeHandler(p, cfg.Server.MaxUploadMB), cfg.Server.APIKeys)
	glog.Info("HTTP路由注册成功")
	return h
}

// runServe 启动HTTP服务，收到 SIGINT/SIGTERM 后优雅退出
func runServe(cfg *config.Config, p *processor.ResumeParser) int {
	h := newServer(cfg, p)

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			glog.Errorf("启动HTTP服务器失败: %v", err)
			return 1
		}
		return 0
	case <-quit:
	}
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
		return 1
	}
	glog.Info("优雅退出完成")
	return 0
}
