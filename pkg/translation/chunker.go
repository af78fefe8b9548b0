package translation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// 段落分隔：一个或多个空行
var paragraphSeparator = regexp.MustCompile(`\n{2,}`)

// EstimateTokens 粗略估算文本的token数（约4个字符对应1个token）
// 这是成本估算的启发式代理，不是精确的tokenizer
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// ChunkConfig 分块配置
type ChunkConfig struct {
	// MaxTokens 单个块的token上限（估算值）
	MaxTokens int

	// OverlapTokens 相邻块的重叠token数
	// 当前实现接受该参数但不产生实际重叠，重叠会破坏按序拼接还原原文的不变式
	OverlapTokens int
}

// Chunker 文本分块器接口
type Chunker interface {
	// Split 将文本分块
	Split(text string) []Chunk

	// GetConfig 获取分块配置
	GetConfig() ChunkConfig
}

// defaultChunker 默认文本分块器实现
type defaultChunker struct {
	config ChunkConfig
}

// NewChunker 创建默认分块器
func NewChunker(maxTokens, overlapTokens int) Chunker {
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	if overlapTokens >= maxTokens {
		overlapTokens = maxTokens / 10
	}

	return &defaultChunker{
		config: ChunkConfig{
			MaxTokens:     maxTokens,
			OverlapTokens: overlapTokens,
		},
	}
}

// SplitChunks 按默认分块器将文本分块
func SplitChunks(text string, maxTokens, overlapTokens int) []Chunk {
	return NewChunker(maxTokens, overlapTokens).Split(text)
}

// GetConfig 获取分块配置
func (c *defaultChunker) GetConfig() ChunkConfig {
	return c.config
}

// Split 将文本分块
//
// 按空行分段，逐段累积；估算大小超过上限时先冲刷当前累积。
// 超过上限的单个段落按句子边界再分；超过上限的单个句子整体作为一块输出。
// 相同输入和参数总是产生相同的分块结果。
func (c *defaultChunker) Split(text string) []Chunk {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return []Chunk{}
	}

	var chunks []Chunk
	var acc []string
	accTokens := 0

	flush := func(joiner string) {
		if len(acc) == 0 {
			return
		}
		index := len(chunks)
		chunks = append(chunks, Chunk{
			ID:      fmt.Sprintf("chunk_%d", index),
			Content: strings.Join(acc, joiner),
			Index:   index,
		})
		acc = acc[:0]
		accTokens = 0
	}

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		// 单个段落超过上限，冲刷已累积内容后按句子再分
		if paraTokens > c.config.MaxTokens {
			flush("\n\n")

			for _, sentence := range splitSentences(para) {
				sentTokens := EstimateTokens(sentence)
				if accTokens+sentTokens > c.config.MaxTokens {
					flush(" ")
				}
				acc = append(acc, sentence)
				accTokens += sentTokens
			}
			continue
		}

		// 加入该段落会超过上限，先冲刷再另起一块
		if accTokens+paraTokens > c.config.MaxTokens {
			flush("\n\n")
		}

		acc = append(acc, para)
		accTokens += paraTokens
	}

	flush("\n\n")

	return chunks
}

// splitParagraphs 按空行分割文本为段落
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	parts := paragraphSeparator.Split(text, -1)

	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			paragraphs = append(paragraphs, part)
		}
	}

	return paragraphs
}

// splitSentences 按句子结束符分割段落
// 结束符为 . ! ? 。！？ 且后跟空白字符
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)

		if isSentenceEnd(r) && (i+1 >= len(runes) || unicode.IsSpace(runes[i+1])) {
			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}

	if current.Len() > 0 {
		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}

// isSentenceEnd 判断是否是句子结束符
func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？'
}

// MergeTranslated 将翻译结果按块顺序合并为完整文档
func MergeTranslated(chunks []TranslatedChunk) string {
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Translated)
	}
	return strings.Join(texts, "\n\n")
}
