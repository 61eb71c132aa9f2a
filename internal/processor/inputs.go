package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// CollectInputs 把命令行参数展开为待解析的文件列表
// 目录只展开一层并只保留受支持的文件(按文件名排序)；显式给出的文件原样保留，由解析阶段报告格式错误
func CollectInputs(args []string, supports func(path string) bool) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("无法访问输入 %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("读取目录 %s 失败: %w", arg, err)
		}
		var inDir []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(arg, entry.Name())
			if supports(path) {
				inDir = append(inDir, path)
			}
		}
		sort.Strings(inDir)
		files = append(files, inDir...)
	}
	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	return files, nil
}
