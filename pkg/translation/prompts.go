package translation

import (
	"fmt"
	"strings"
)

// PromptBuilder 翻译提示词构建器
type PromptBuilder struct {
	// SourceLang 源语言（如 English）
	SourceLang string

	// TargetLang 目标语言（如 Simplified Chinese）
	TargetLang string
}

// NewPromptBuilder 创建提示词构建器
func NewPromptBuilder(sourceLang, targetLang string) *PromptBuilder {
	if sourceLang == "" {
		sourceLang = "English"
	}
	if targetLang == "" {
		targetLang = "Simplified Chinese"
	}
	return &PromptBuilder{
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}
}

// Build 构建单个文本块的翻译提示词
// relevantTerms 非空时附加强制术语表段落
func (pb *PromptBuilder) Build(text string, relevantTerms []GlossaryEntry) string {
	var glossarySection string
	if len(relevantTerms) > 0 {
		var lines []string
		for _, term := range relevantTerms {
			lines = append(lines, fmt.Sprintf("- %s → %s", term.Source, term.Target))
		}
		glossarySection = fmt.Sprintf(`
## Mandatory Terminology
You MUST use these exact translations for the following terms:
%s
`, strings.Join(lines, "\n"))
	}

	return fmt.Sprintf(`# Technical Document Translation Task

## Instructions
Translate the following %s technical document content into %s.

## Rules
1. Preserve all Markdown formatting (headers, lists, tables, code blocks)
2. Keep technical terms, standards codes (e.g., EN 13001, ISO 9001), and formulas unchanged
3. Maintain the exact document structure
4. Do NOT add explanations or commentary
5. Output ONLY the translated text
%s
## Source Text
%s

## Translation (%s):`,
		pb.SourceLang, pb.TargetLang,
		glossarySection,
		text,
		pb.TargetLang)
}

// CleanResponse 清理LLM响应
// 有些模型会用代码块包裹输出，这里移除首尾的代码块围栏并去掉多余空白
func CleanResponse(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if strings.HasPrefix(lines[0], "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		text = strings.Join(lines, "\n")
	}

	return strings.TrimSpace(text)
}
