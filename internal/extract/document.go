package extract

import (
	"strings"

	"golang.org/x/text/language"
)

// Document 抽取后的文档及粗粒度元数据
type Document struct {
	// Text 完整的markdown文本
	Text string `json:"text"`

	// Pages 页数估算：每500词算一页，至少一页
	Pages int `json:"pages"`

	// WordCount 词数
	WordCount int `json:"word_count"`

	// Language 检测到的语言
	Language language.Tag `json:"language"`
}

// NewDocument 从抽取文本构造文档并计算元数据
func NewDocument(text string) *Document {
	wordCount := len(strings.Fields(text))

	pages := wordCount / 500
	if pages < 1 {
		pages = 1
	}

	return &Document{
		Text:      text,
		Pages:     pages,
		WordCount: wordCount,
		Language:  DetectLanguage(text),
	}
}

// DetectLanguage 简易语言检测
// 中文字符（CJK统一表意文字基本区）占比超过10%判定为中文，否则为英文
func DetectLanguage(text string) language.Tag {
	var han, total int
	for _, r := range text {
		total++
		if r >= 0x4E00 && r <= 0x9FFF {
			han++
		}
	}

	if total > 0 && float64(han)/float64(total) > 0.1 {
		return language.Chinese
	}
	return language.English
}
