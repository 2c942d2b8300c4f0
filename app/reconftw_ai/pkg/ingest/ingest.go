package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

// errInvalidUTF8 文件不是合法的 UTF-8 文本
var errInvalidUTF8 = errors.New("content is not valid UTF-8 text")

// walkDir 可在测试中替换
var walkDir = filepath.WalkDir

// Read 把 rootDir/category 下所有文件拼接成一段文本
//
// 每个文件前加 "--- 相对路径 ---" 标记。读取失败只影响该文件，
// 整个类别不会因此报错；目录不存在或没有文件时返回说明性标记。
func Read(category model.Category, rootDir string) string {
	categoryDir := filepath.Join(rootDir, string(category))

	info, err := os.Stat(categoryDir)
	if err != nil || !info.IsDir() {
		return fmt.Sprintf("%s Directory %s does not exist.", model.ErrorPrefix, categoryDir)
	}

	// 类别目录本身可能是符号链接，WalkDir 不会进入链接
	walkRoot, err := filepath.EvalSymlinks(categoryDir)
	if err != nil {
		return fmt.Sprintf("%s Failed to read %s: %v", model.ErrorPrefix, category, err)
	}

	// 相对路径始终以类别名开头，与目录是否为链接无关
	relPath := func(path string) string {
		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return filepath.ToSlash(path)
		}
		return filepath.ToSlash(filepath.Join(string(category), rel))
	}

	var sb strings.Builder
	// WalkDir 按字典序遍历，保证同样的目录得到同样的输出
	_ = walkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			writeFailure(&sb, relPath(path), err)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel := relPath(path)
		content, err := readText(path)
		if err != nil {
			writeFailure(&sb, rel, err)
			return nil
		}
		fmt.Fprintf(&sb, "--- %s ---\n%s\n", rel, content)
		return nil
	})

	combined := strings.TrimSpace(sb.String())
	if combined == "" {
		return fmt.Sprintf("%s No files found in %s.", model.InfoPrefix, categoryDir)
	}
	return combined
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	return strings.TrimRightFunc(string(data), unicode.IsSpace), nil
}

func writeFailure(sb *strings.Builder, rel string, err error) {
	fmt.Fprintf(sb, "%s Failed to read %s: %v\n", model.ErrorPrefix, rel, err)
}
