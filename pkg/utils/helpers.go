package utils

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// StringPtr 返回字符串的指针
func StringPtr(s string) *string {
	return &s
}

// FileMD5 流式计算文件内容的MD5
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
