package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 命令行参数的默认值
const (
	DefaultResultsDir   = "./reconftw_output"
	DefaultOutputDir    = "./reconftw_ai_output"
	DefaultModel        = "gemini-2.0-flash"
	DefaultOutputFormat = "txt"
	DefaultReportType   = "executive"
	DefaultPromptsFile  = "prompts.json"
	DefaultProvider     = ProviderGemini
)

// 支持的 LLM 提供方
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config 项目配置结构体
//
// 同时带 json tag，展示服务通过 kratos config 读取同一份文件
type Config struct {
	ResultsDir   string            `yaml:"results_dir" json:"results_dir"`
	OutputDir    string            `yaml:"output_dir" json:"output_dir"`
	PromptsFile  string            `yaml:"prompts_file" json:"prompts_file"`
	ReportType   string            `yaml:"report_type" json:"report_type"`
	OutputFormat string            `yaml:"output_format" json:"output_format"`
	LLM          LLMConfig         `yaml:"llm" json:"llm"`
	Log          LogConfig         `yaml:"log" json:"log"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	DB           DBConfig          `yaml:"db" json:"db"`
	Display      DisplayConfig     `yaml:"display" json:"display"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string `yaml:"provider" json:"provider"` // gemini | openai
	BaseURL  string `yaml:"base_url" json:"base_url"`
	APIKey   string `yaml:"api_key" json:"api_key"`
	Model    string `yaml:"model" json:"model"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"` // 每个阶段的最大并发任务数，0 表示类别数
	QPS     int `yaml:"qps" json:"qps"`         // 限流器 burst
	RPM     int `yaml:"rpm" json:"rpm"`         // 每分钟请求数，0 表示不限流
}

// DBConfig 数据库相关配置，Host 为空时不归档
type DBConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Name     string `yaml:"name" json:"name"`
}

// DisplayConfig 报告浏览服务配置
type DisplayConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

// Default 返回填好默认值的配置
func Default() *Config {
	return &Config{
		ResultsDir:   DefaultResultsDir,
		OutputDir:    DefaultOutputDir,
		PromptsFile:  DefaultPromptsFile,
		ReportType:   DefaultReportType,
		OutputFormat: DefaultOutputFormat,
		LLM: LLMConfig{
			Provider: DefaultProvider,
			Model:    DefaultModel,
		},
		Log: LogConfig{
			Level: "info",
		},
		DB: DBConfig{
			Port: 5432,
		},
		Display: DisplayConfig{
			Addr:    ":8000",
			Timeout: "5s",
		},
	}
}

// LoadConfig 从指定路径加载配置，文件中未出现的字段保留默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// ResolveAPIKey 解析凭证：配置文件优先，其次是提供方对应的环境变量
func (c LLMConfig) ResolveAPIKey(getenv func(string) string) (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}

	var env string
	switch c.Provider {
	case ProviderGemini, "":
		env = "GOOGLE_API_KEY"
	case ProviderOpenAI:
		env = "OPENAI_API_KEY"
	default:
		return "", fmt.Errorf("unknown llm provider: %s", c.Provider)
	}

	if key := getenv(env); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s not found in environment variables", env)
}
