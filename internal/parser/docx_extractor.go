package parser

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxExtractor 读取 .docx 正文段落，每段文本后追加一个换行
type DocxExtractor struct{}

// NewDocxExtractor 创建 DOCX 提取器
func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

// ExtractText 实现 TextExtractor
func (e *DocxExtractor) ExtractText(_ context.Context, path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", NewDecodeError(path, "open_docx", err)
	}
	defer doc.Close()

	text, err := ParagraphText(doc.Editable().GetContent())
	if err != nil {
		return "", NewDecodeError(path, "parse_docx", err)
	}
	return text, nil
}

// ParagraphText 从 word/document.xml 中取出 body 下的段落文本
// 只统计 body 的直接子段落，表格与文本框内的段落不计入
// 运行内的 <w:tab/> 记为 \t，<w:br/> <w:cr/> 记为 \n
func ParagraphText(documentXML string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		b        strings.Builder
		stack    []string
		paraDeep = -1 // 正在收集的段落在栈中的深度，-1 表示不在段落中
	)

	parent := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if paraDeep < 0 && name == "p" && parent() == "body" {
				paraDeep = len(stack)
			} else if paraDeep >= 0 && parent() == "r" {
				switch name {
				case "tab":
					b.WriteByte('\t')
				case "br", "cr":
					b.WriteByte('\n')
				}
			}
			stack = append(stack, name)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			stack = stack[:len(stack)-1]
			if paraDeep >= 0 && len(stack) == paraDeep {
				b.WriteByte('\n')
				paraDeep = -1
			}
		case xml.CharData:
			if paraDeep >= 0 && parent() == "t" {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
