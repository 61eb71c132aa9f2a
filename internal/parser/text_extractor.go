package parser

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const utf8BOM = "\ufeff"

var newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// TextFileExtractor 读取纯文本文件，UTF-8 优先，失败后按 Latin-1 解码一次
type TextFileExtractor struct{}

// NewTextFileExtractor 创建纯文本提取器
func NewTextFileExtractor() *TextFileExtractor {
	return &TextFileExtractor{}
}

// ExtractText 实现 TextExtractor
func (e *TextFileExtractor) ExtractText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", NewDecodeError(path, "read_txt", err)
	}
	text, err := DecodeText(data)
	if err != nil {
		return "", NewDecodeError(path, "decode_txt", err)
	}
	return text, nil
}

// DecodeText 把字节解码为文本并统一换行符为 \n
func DecodeText(data []byte) (string, error) {
	var text string
	if utf8.Valid(data) {
		text = strings.TrimPrefix(string(data), utf8BOM)
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		text = string(decoded)
	}
	return newlineNormalizer.Replace(text), nil
}
