package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nerdneilsfield/go-glossary-translator/pkg/translation"
)

// printSummary 输出翻译结果摘要和术语使用统计
func printSummary(outputPath string, chunks []translation.Chunk, results []translation.TranslatedChunk, failures []string, glossary []translation.GlossaryEntry) {
	title := color.New(color.FgCyan, color.Bold)
	_, _ = title.Println("\n翻译摘要")

	succeeded := len(chunks) - len(failures)
	fmt.Printf("  块数: %d  成功: %d  失败: %d\n", len(chunks), succeeded, len(failures))
	fmt.Printf("  输出: %s\n", outputPath)

	if len(failures) > 0 {
		warn := color.New(color.FgRed, color.Bold)
		_, _ = warn.Printf("  失败的块: %v\n", failures)
	}

	if len(glossary) == 0 {
		return
	}

	// 术语使用统计：每个术语在所有译文中被定位到的次数
	usage := make(map[string]int, len(glossary))
	for _, result := range results {
		for _, match := range result.TermsUsed {
			usage[match.Source]++
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"源术语", "目标术语", "使用次数"})
	for _, entry := range glossary {
		t.AppendRow(table.Row{entry.Source, entry.Target, usage[entry.Source]})
	}
	t.Render()
}
