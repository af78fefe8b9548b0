package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-glossary-translator/internal/config"
	"github.com/nerdneilsfield/go-glossary-translator/internal/extract"
	"github.com/nerdneilsfield/go-glossary-translator/internal/logger"
	"github.com/nerdneilsfield/go-glossary-translator/pkg/keypool"
	"github.com/nerdneilsfield/go-glossary-translator/pkg/providers/gemini"
	"github.com/nerdneilsfield/go-glossary-translator/pkg/translation"
)

var (
	// 命令行标志变量
	cfgFile      string
	glossaryPath string
	sourceLang   string
	targetLang   string
	chunkSize    int
	chunkOverlap int
	syncMode     bool // 同步模式，不渲染进度条
	debugMode    bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glossary-translator [flags] input_file output_file",
		Short: "强制执行术语表的长文档翻译工具",
		Long: `强制执行术语表的长文档翻译工具。

将长技术文档按段落和句子边界分割为有界大小的文本块，为每个块注入
相关的术语表条目，通过可轮换的API密钥池调用翻译模型，并在翻译过程中
实时报告逐块进度。单个块的失败不会中止整个任务。

输入支持纯文本/Markdown文件，配置了MinerU密钥时也支持PDF。
术语表为JSON文件: [{"source": "load", "target": "负载"}, ...]`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(args[0], args[1])
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	rootCmd.Flags().StringVarP(&glossaryPath, "glossary", "g", "", "术语表JSON文件路径")
	rootCmd.Flags().StringVarP(&sourceLang, "source", "s", "", "源语言 (默认 English)")
	rootCmd.Flags().StringVarP(&targetLang, "target", "t", "", "目标语言 (默认 Simplified Chinese)")
	rootCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "单个块的token上限估算值")
	rootCmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", -1, "相邻块的重叠token数")
	rootCmd.Flags().BoolVar(&syncMode, "sync", false, "同步模式，失败的块以错误标记占位")
	rootCmd.Flags().BoolVarP(&debugMode, "debug", "d", false, "输出调试日志")

	return rootCmd
}

// runTranslate 执行完整的翻译流程
func runTranslate(inputPath, outputPath string) error {
	log := logger.NewLogger(debugMode)
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	applyFlags(cfg)

	if !cfg.HasGeminiKey() {
		return fmt.Errorf("未配置Gemini API密钥，请设置 GEMINI_API_KEY 或 GEMINI_API_KEYS 环境变量")
	}

	// 捕获中断信号，取消后不再发起新的块翻译
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	text, err := loadInput(ctx, cfg, log, inputPath)
	if err != nil {
		return err
	}

	var glossary []translation.GlossaryEntry
	if glossaryPath != "" {
		glossary, err = translation.LoadGlossary(glossaryPath)
		if err != nil {
			return fmt.Errorf("加载术语表失败: %w", err)
		}
		log.Info("glossary loaded",
			zap.String("path", glossaryPath),
			zap.Int("entries", len(glossary)))
	}

	chunks := translation.SplitChunks(text, cfg.ChunkSize, cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return fmt.Errorf("输入文件没有可翻译的内容: %s", inputPath)
	}
	log.Info("document split into chunks",
		zap.Int("chunks", len(chunks)),
		zap.Int("chunk_size", cfg.ChunkSize))

	pool := keypool.New(cfg.GeminiAPIKeys)
	pool.SetFallback(cfg.GeminiAPIKey)

	geminiCfg := gemini.DefaultConfig()
	geminiCfg.APIEndpoint = cfg.GeminiAPIBase
	geminiCfg.Model = cfg.GeminiModel
	geminiCfg.Timeout = cfg.RequestTimeout
	provider := gemini.New(geminiCfg, pool, log)

	executor := translation.NewExecutor(provider, pool,
		translation.WithLogger(log),
		translation.WithPromptBuilder(translation.NewPromptBuilder(cfg.SourceLanguage, cfg.TargetLanguage)),
		translation.WithTemperature(cfg.Temperature),
		translation.WithMaxOutputTokens(cfg.MaxOutputTokens),
	)
	batcher := translation.NewBatcher(executor,
		translation.WithBatchLogger(log),
		translation.WithStreamDelay(cfg.RequestDelay),
	)

	var results []translation.TranslatedChunk
	var failures []string

	if syncMode {
		results, err = batcher.TranslateAll(ctx, chunks, glossary)
		if err != nil {
			return err
		}
		for _, result := range results {
			if strings.HasPrefix(result.Translated, "[Translation Error:") {
				failures = append(failures, result.ID)
			}
		}
	} else {
		results, failures, err = streamWithProgress(ctx, batcher, chunks, glossary)
		if err != nil {
			return err
		}
	}

	merged := translation.MergeTranslated(results)
	if err := os.WriteFile(outputPath, []byte(merged), 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}

	printSummary(outputPath, chunks, results, failures, glossary)
	return nil
}

// applyFlags 命令行标志覆盖配置文件
func applyFlags(cfg *config.Config) {
	if sourceLang != "" {
		cfg.SourceLanguage = sourceLang
	}
	if targetLang != "" {
		cfg.TargetLanguage = targetLang
	}
	if chunkSize > 0 {
		cfg.ChunkSize = chunkSize
	}
	if chunkOverlap >= 0 {
		cfg.ChunkOverlap = chunkOverlap
	}
	if debugMode {
		cfg.Debug = true
	}
}

// loadInput 读取输入文件，PDF走抽取服务，其余按文本读取
func loadInput(ctx context.Context, cfg *config.Config, log *zap.Logger, inputPath string) (string, error) {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("读取输入文件失败: %w", err)
	}

	if !strings.EqualFold(filepath.Ext(inputPath), ".pdf") {
		return string(content), nil
	}

	extractCfg := extract.DefaultConfig()
	extractCfg.APIKey = cfg.MineruAPIKey
	extractCfg.APIBase = cfg.MineruAPIBase
	client := extract.NewClient(extractCfg, log)
	if !client.IsConfigured() {
		return "", fmt.Errorf("PDF输入需要配置 MINERU_API_KEY")
	}

	doc, err := client.Extract(ctx, content, filepath.Base(inputPath))
	if err != nil {
		return "", fmt.Errorf("文档抽取失败: %w", err)
	}

	pterm.Info.Printfln("文档抽取完成: %d 页, %d 词, 语言 %s", doc.Pages, doc.WordCount, doc.Language)
	return doc.Text, nil
}

// streamWithProgress 消费事件流并渲染进度条
// 返回的结果列表与输入块一一对应，失败的块以错误标记占位
func streamWithProgress(ctx context.Context, batcher *translation.Batcher, chunks []translation.Chunk, glossary []translation.GlossaryEntry) ([]translation.TranslatedChunk, []string, error) {
	bar, err := pterm.DefaultProgressbar.
		WithTotal(len(chunks)).
		WithTitle("翻译进度").
		Start()
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]translation.TranslatedChunk, len(chunks))
	var failures []string

	for event := range batcher.Stream(ctx, chunks, glossary) {
		switch event.Kind {
		case translation.EventProgress:
			bar.UpdateTitle(fmt.Sprintf("翻译 %s (%d/%d)", event.ChunkID, event.Current+1, event.Total))
		case translation.EventChunkComplete:
			byID[event.Chunk.ID] = *event.Chunk
			bar.Increment()
		case translation.EventError:
			failures = append(failures, event.ChunkID)
			pterm.Error.Printfln("块 %s 翻译失败: %s", event.ChunkID, event.Message)
			bar.Increment()
		case translation.EventDone:
			bar.UpdateTitle("翻译完成")
		}
	}
	_, _ = bar.Stop()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("翻译被中断: %w", err)
	}

	results := make([]translation.TranslatedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if result, ok := byID[chunk.ID]; ok {
			results = append(results, result)
			continue
		}
		results = append(results, translation.TranslatedChunk{
			ID:         chunk.ID,
			Original:   chunk.Content,
			Translated: fmt.Sprintf("[Translation Error: chunk %s failed]", chunk.ID),
			TermsUsed:  []translation.TermMatch{},
		})
	}

	return results, failures, nil
}
