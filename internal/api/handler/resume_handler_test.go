package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/extractor"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeParser 记录收到的路径并返回预设结果
type fakeParser struct {
	mu       sync.Mutex
	err      error
	gotName  string
	gotBytes []byte
}

func (f *fakeParser) Parse(_ context.Context, path string) (*types.ResumeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotName = filepath.Base(path)
	f.gotBytes, _ = os.ReadFile(path)
	if f.err != nil {
		return nil, f.err
	}
	return &types.ResumeRecord{
		FileName:   filepath.Base(path),
		Name:       "Jane Doe",
		Education:  []string{types.SentinelNotSpecified},
		Skills:     []string{"Go"},
		Experience: []string{types.SentinelNotSpecified},
	}, nil
}

func (f *fakeParser) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

func newEngine(p handler.ResumeParser, apiKeys ...string) *server.Hertz {
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	router.RegisterRoutes(h, handler.NewResumeHandler(p, 1), apiKeys)
	return h
}

func createMultipartFormWithContent(t *testing.T, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(fileContent))
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postResume(h *server.Hertz, body *bytes.Buffer, contentType string, headers ...ut.Header) *ut.ResponseRecorder {
	headers = append(headers, ut.Header{Key: "Content-Type", Value: contentType})
	return ut.PerformRequest(h.Engine, "POST", "/api/v1/resumes/parse",
		&ut.Body{Body: body, Len: body.Len()}, headers...)
}

func errorMessage(t *testing.T, resp *ut.ResponseRecorder) string {
	var errResp map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	msg, _ := errResp["error"].(string)
	return msg
}

func TestHealth(t *testing.T) {
	h := newEngine(&fakeParser{}, "secret")
	resp := ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.Code, "健康检查不需要密钥")
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

// 验证上传文件以原始文件名落盘并返回解析记录
func TestHandleParse_Success(t *testing.T) {
	fp := &fakeParser{}
	h := newEngine(fp)

	body, contentType := createMultipartFormWithContent(t, "jane_cv.txt", []byte("Jane Doe"))
	resp := postResume(h, body, contentType)
	require.Equal(t, http.StatusOK, resp.Code)

	var record types.ResumeRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &record))
	assert.Equal(t, "jane_cv.txt", record.FileName)
	assert.Equal(t, "jane_cv.txt", fp.gotName, "临时文件应保留原始文件名")
	assert.Equal(t, []byte("Jane Doe"), fp.gotBytes)
}

func TestHandleParse_StripsDirectoryFromFilename(t *testing.T) {
	fp := &fakeParser{}
	h := newEngine(fp)

	body, contentType := createMultipartFormWithContent(t, `..\..\evil\cv.pdf`, []byte("%PDF"))
	resp := postResume(h, body, contentType)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "cv.pdf", fp.gotName)
}

func TestHandleParse_MissingFile(t *testing.T) {
	h := newEngine(&fakeParser{})

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("other", "x"))
	require.NoError(t, writer.Close())

	resp := postResume(h, body, writer.FormDataContentType())
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "文件未找到", errorMessage(t, resp))
}

func TestHandleParse_UnsupportedType(t *testing.T) {
	fp := &fakeParser{}
	h := newEngine(fp)

	body, contentType := createMultipartFormWithContent(t, "notes.MD", []byte("# notes"))
	resp := postResume(h, body, contentType)
	require.Equal(t, http.StatusUnsupportedMediaType, resp.Code)
	assert.Contains(t, errorMessage(t, resp), "不支持的文件类型: .md")
	assert.Empty(t, fp.gotName, "不支持的类型不应进入解析")
}

func TestHandleParse_TooLarge(t *testing.T) {
	h := newEngine(&fakeParser{})

	body, contentType := createMultipartFormWithContent(t, "big.txt", bytes.Repeat([]byte("a"), 1024*1024+1))
	resp := postResume(h, body, contentType)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Contains(t, errorMessage(t, resp), "1 MB")
}

func TestHandleParse_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"decode", parser.NewDecodeError("cv.pdf", "pdf", errors.New("bad xref")), http.StatusUnprocessableEntity},
		{"empty", parser.NewEmptyDocumentError("cv.pdf"), http.StatusUnprocessableEntity},
		{"unsupported", parser.NewUnsupportedError("cv.pdf", ".pdf"), http.StatusUnsupportedMediaType},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newEngine(&fakeParser{err: tt.err})
			body, contentType := createMultipartFormWithContent(t, "cv.pdf", []byte("%PDF-1.4"))
			resp := postResume(h, body, contentType)
			assert.Equal(t, tt.want, resp.Code)
			assert.NotEmpty(t, errorMessage(t, resp))
		})
	}
}

func TestHandleParse_APIKey(t *testing.T) {
	h := newEngine(&fakeParser{}, "k1", "k2")

	body, contentType := createMultipartFormWithContent(t, "cv.txt", []byte("Jane"))
	resp := postResume(h, body, contentType)
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "缺少密钥")

	body, contentType = createMultipartFormWithContent(t, "cv.txt", []byte("Jane"))
	resp = postResume(h, body, contentType, ut.Header{Key: router.APIKeyHeader, Value: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "错误的密钥")

	body, contentType = createMultipartFormWithContent(t, "cv.txt", []byte("Jane"))
	resp = postResume(h, body, contentType, ut.Header{Key: router.APIKeyHeader, Value: "k2"})
	assert.Equal(t, http.StatusOK, resp.Code, "任一已配置密钥均可")
}

// 端到端：真实的读取器和抽取器处理上传的TXT简历
func TestHandleParse_EndToEndText(t *testing.T) {
	ex, err := extractor.New(extractor.DefaultVocabulary())
	require.NoError(t, err)
	p, err := processor.NewResumeParser(&processor.Components{
		Reader:    parser.NewDocumentReader(nil),
		Extractor: ex,
	}, &processor.Settings{Logger: zerolog.Nop()})
	require.NoError(t, err)
	h := newEngine(p)

	content := "Jane Doe\r\njane@example.com\r\nSkills: Python, Docker\r\n"
	body, contentType := createMultipartFormWithContent(t, "jane.txt", []byte(content))
	resp := postResume(h, body, contentType)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var record types.ResumeRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &record))
	assert.Equal(t, "jane.txt", record.FileName)
	assert.Equal(t, "Jane Doe", record.Name)
	require.NotNil(t, record.Email)
	assert.Equal(t, "jane@example.com", *record.Email)
	assert.Equal(t, []string{"Python", "Docker"}, record.Skills)

	body, contentType = createMultipartFormWithContent(t, "cv.pdf", []byte("%PDF"))
	resp = postResume(h, body, contentType)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.Code, "未注册PDF后端时PDF不受支持")

	body, contentType = createMultipartFormWithContent(t, "blank.txt", nil)
	resp = postResume(h, body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code, "空文档")
}
