package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

// Placeholder 模板中唯一的数据占位符
const Placeholder = "{data}"

// DefaultTemplate 目录中缺少 (报告类型, 类别) 时使用的内置模板
const DefaultTemplate = "Analyze this reconnaissance data and highlight high-risk findings:\n" + Placeholder

// Catalog 报告类型 -> 类别 -> 模板
type Catalog struct {
	templates map[string]map[string]string
}

// New 从内存中的映射构造目录，并校验占位符
func New(templates map[string]map[string]string) (*Catalog, error) {
	if err := validate(templates); err != nil {
		return nil, err
	}
	return &Catalog{templates: templates}, nil
}

// Load 读取 Prompt 目录文件，.yaml/.yml 按 YAML 解析，其余按 JSON 解析
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("prompts file '%s' not found", path)
		}
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	templates := make(map[string]map[string]string)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("invalid YAML in prompts file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("invalid JSON in prompts file: %w", err)
		}
	}

	return New(templates)
}

func validate(templates map[string]map[string]string) error {
	var problems []string
	for reportType, byCategory := range templates {
		for category, tpl := range byCategory {
			if n := strings.Count(tpl, Placeholder); n != 1 {
				problems = append(problems, fmt.Sprintf("%s.%s has %d %s placeholders", reportType, category, n, Placeholder))
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("malformed prompts: %s", strings.Join(problems, "; "))
}

// Template 返回 (报告类型, 类别) 的模板，缺失时返回 DefaultTemplate
func (c *Catalog) Template(reportType model.ReportType, category model.Category) string {
	if c != nil {
		if tpl, ok := c.templates[string(reportType)][string(category)]; ok {
			return tpl
		}
	}
	return DefaultTemplate
}

// Render 把数据填入模板
func (c *Catalog) Render(reportType model.ReportType, category model.Category, data string) string {
	return strings.Replace(c.Template(reportType, category), Placeholder, data, 1)
}
