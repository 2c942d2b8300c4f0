package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/config"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/engine"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/llm"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/logger"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/prompt"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/report"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/storage"
)

var (
	configFile   string
	resultsDir   string
	outputDir    string
	modelName    string
	outputFormat string
	reportType   string
	promptsFile  string
	provider     string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:          "reconftw_ai",
	Short:        "Use an LLM to interpret reconFTW results",
	Long:         `ReconFTW-AI reads the osint, subdomains, hosts and webs results of a reconFTW run, analyzes each category with an LLM and writes one report with a cross-category overview.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		rt, err := model.ParseReportType(cfg.ReportType)
		if err != nil {
			return err
		}
		format, err := model.ParseOutputFormat(cfg.OutputFormat)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg, rt, format)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configFile, "config", "", "Optional YAML config file")
	flags.StringVar(&resultsDir, "results-dir", config.DefaultResultsDir, "Directory with reconFTW results.")
	flags.StringVar(&outputDir, "output-dir", config.DefaultOutputDir, "Where to save the analysis.")
	flags.StringVar(&modelName, "model", config.DefaultModel, "Model name (e.g., gemini-2.0-flash or gemini-1.5-pro).")
	flags.StringVar(&outputFormat, "output-format", config.DefaultOutputFormat, "Output format: "+choices(model.OutputFormats)+".")
	flags.StringVar(&reportType, "report-type", config.DefaultReportType, "Type of report to generate: "+choices(model.ReportTypes)+".")
	flags.StringVar(&promptsFile, "prompts-file", config.DefaultPromptsFile, "JSON or YAML file containing prompt templates.")
	flags.StringVar(&provider, "provider", config.DefaultProvider, "LLM provider: gemini or openai.")
	flags.StringVar(&logLevel, "log-level", "info", "Log level.")
}

func choices[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, "|")
}

// buildConfig 默认值 <- 配置文件 <- 显式传入的命令行参数
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.LoadConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("无法加载配置文件: %w", err)
		}
		cfg = loaded
	}

	overrides := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"results-dir", resultsDir, &cfg.ResultsDir},
		{"output-dir", outputDir, &cfg.OutputDir},
		{"model", modelName, &cfg.LLM.Model},
		{"output-format", outputFormat, &cfg.OutputFormat},
		{"report-type", reportType, &cfg.ReportType},
		{"prompts-file", promptsFile, &cfg.PromptsFile},
		{"provider", provider, &cfg.LLM.Provider},
		{"log-level", logLevel, &cfg.Log.Level},
	}
	for _, o := range overrides {
		if configFile == "" || cmd.Flags().Changed(o.flag) {
			*o.dst = o.value
		}
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, rt model.ReportType, format model.OutputFormat) error {
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("无法初始化日志: %w", err)
	}
	defer logger.Close()

	// 启动阶段的错误都是致命的，流水线不会开始
	catalog, err := prompt.Load(cfg.PromptsFile)
	if err != nil {
		logger.Log.Fatalf("加载 Prompt 失败: %v", err)
	}

	apiKey, err := cfg.LLM.ResolveAPIKey(os.Getenv)
	if err != nil {
		logger.Log.Fatalf("配置错误: %v", err)
	}

	gen, err := llm.NewGenerator(ctx, cfg.LLM, apiKey)
	if err != nil {
		logger.Log.Fatalf("LLM 初始化失败: %v", err)
	}

	limiter := llm.NewLimiter(cfg.Concurrency.RPM, cfg.Concurrency.QPS)
	logger.Log.Infof("限流器已配置: Limit=%.2f req/s, Burst=%d", float64(limiter.Limit()), limiter.Burst())

	analyzer := llm.NewAnalyzer(gen, catalog, cfg.LLM.Model, rt, llm.WithLimiter(limiter))
	eng := engine.NewEngine(analyzer, engine.WithWorkers(cfg.Concurrency.Workers))

	logger.Log.Infof("[*] Analyzing reconFTW results with %s...", cfg.LLM.Model)
	rep := eng.Run(ctx, engine.RunOptions{ResultsDir: cfg.ResultsDir})

	path, err := report.Save(rep, cfg.OutputDir, format)
	if err != nil {
		return fmt.Errorf("保存报告失败: %w", err)
	}
	logger.Log.Infof("[*] Results saved to '%s'", path)

	archive(ctx, cfg.DB, rep)
	return nil
}

// archive 配置了数据库时归档报告，失败不影响本次运行
func archive(ctx context.Context, cfg config.DBConfig, rep *model.Report) {
	if cfg.Host == "" {
		logger.Log.Debug("未配置数据库信息，跳过归档")
		return
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logger.Log.Errorf("无法连接数据库: %v. 仅保留报告文件。", err)
		return
	}
	defer store.Close()

	id, err := store.SaveReport(ctx, rep)
	if err != nil {
		logger.Log.Errorf("归档报告失败: %v", err)
		return
	}
	logger.Log.Infof("报告已归档到数据库 (run_id=%d)", id)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
