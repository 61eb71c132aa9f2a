package extractor

import (
	"strings"
	"unicode/utf8"
)

// window 返回 text[start:end] 向前后各扩展 radius 个字符后的片段，越界时截到边界，并去掉首尾空白
// start、end 是字节偏移，扩展按 rune 计数
func window(text string, start, end, radius int) string {
	lo := start
	for i := 0; i < radius && lo > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:lo])
		lo -= size
	}
	hi := end
	for i := 0; i < radius && hi < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[hi:])
		hi += size
	}
	return strings.TrimSpace(text[lo:hi])
}

// prefix 返回前 n 个字符
func prefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
