package domain

import "time"

// ReportSummary 报告摘要信息
type ReportSummary struct {
	ID          string    `json:"id"`
	Model       string    `json:"model"`
	ReportType  string    `json:"report_type"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    int       `json:"sections"`
	Failures    int       `json:"failures"`
}

// Section 报告中的一个小节
type Section struct {
	Name   string `json:"name"`
	Failed bool   `json:"failed"`
	Text   string `json:"text"`
}

// Report 报告详情
type Report struct {
	ID          string    `json:"id"`
	Model       string    `json:"model"`
	ReportType  string    `json:"report_type"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections"`
}
