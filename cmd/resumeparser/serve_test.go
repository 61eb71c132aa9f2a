package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxRequestBodySize(t *testing.T) {
	assert.Equal(t, 41*1024*1024, maxRequestBodySize(20))
	assert.Equal(t, 3*1024*1024, maxRequestBodySize(1))
	assert.Equal(t, maxRequestBodySize(20), maxRequestBodySize(0), "非法上限按默认20MB处理")
	assert.Greater(t, maxRequestBodySize(5), 2*5*1024*1024, "两倍上限以内的超限上传应由处理器返回JSON")
}

func TestNewServerOversizeUploadGetsJSON(t *testing.T) {
	cfg, st := newTestSetup(t)
	cfg.Server.MaxUploadMB = 1
	p, err := buildParser(context.Background(), cfg, st)
	require.NoError(t, err)
	h := newServer(cfg, p)

	resp := ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil)
	assert.Equal(t, 200, resp.Code)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "big.txt")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 1024*1024+512*1024))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.Less(t, body.Len(), maxRequestBodySize(cfg.Server.MaxUploadMB))

	resp = ut.PerformRequest(h.Engine, "POST", "/api/v1/resumes/parse",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: writer.FormDataContentType()})
	assert.Equal(t, 413, resp.Code)

	var errResp map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp), "413 应返回JSON")
	assert.Contains(t, errResp["error"], "1 MB")
}
