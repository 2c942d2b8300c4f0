package model

import (
	"fmt"
	"strings"
)

// 文本中的状态前缀，旧版报告靠它区分失败
const (
	ErrorPrefix = "[Error]"
	InfoPrefix  = "[Info]"
)

// Status 分析结果状态
type Status int

const (
	StatusOK Status = iota
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Result 单个小节的分析结果：成功时 Text 为模型输出，失败时为原因
type Result struct {
	Status Status
	Text   string
}

// OK 成功结果
func OK(text string) Result {
	return Result{Status: StatusOK, Text: text}
}

// Failed 失败结果
func Failed(format string, args ...any) Result {
	return Result{Status: StatusFailed, Text: fmt.Sprintf(format, args...)}
}

func (r Result) Failed() bool {
	return r.Status == StatusFailed
}

// Render 渲染为报告文本，失败结果带上 [Error] 前缀
func (r Result) Render() string {
	if r.Failed() {
		return ErrorPrefix + " " + r.Text
	}
	return r.Text
}

// ParseRendered 把报告文本还原为结果
func ParseRendered(text string) Result {
	if rest, ok := strings.CutPrefix(text, ErrorPrefix); ok {
		return Failed("%s", strings.TrimPrefix(rest, " "))
	}
	return OK(text)
}

// IsErrorSentinel 判断文本是否只由错误标记组成
//
// 每个非空行都以 [Error] 开头才算；只要有一行正常数据就不是。
func IsErrorSentinel(text string) bool {
	found := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ErrorPrefix) {
			return false
		}
		found = true
	}
	return found
}
