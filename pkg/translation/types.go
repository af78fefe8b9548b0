package translation

// Chunk 待翻译的文本块
type Chunk struct {
	// ID 块标识，形如 chunk_0
	ID string `json:"id"`

	// Content 待翻译的文本内容
	Content string `json:"content"`

	// Index 块在文档中的序号，从0开始连续递增
	Index int `json:"index"`
}

// GlossaryEntry 术语表条目，源术语到目标术语的强制映射
type GlossaryEntry struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// TermMatch 译文中定位到的一个术语
// Start 和 End 是译文字符串中的 rune 下标（左闭右开）
type TermMatch struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// TranslatedChunk 单个文本块的翻译结果，创建后不再修改
type TranslatedChunk struct {
	ID         string      `json:"id"`
	Original   string      `json:"original"`
	Translated string      `json:"translated"`
	TermsUsed  []TermMatch `json:"terms_used"`
	TokensUsed int         `json:"tokens_used,omitempty"`
}

// EventKind 批量翻译事件类型
type EventKind string

const (
	// EventProgress 开始翻译某个块
	EventProgress EventKind = "progress"

	// EventChunkComplete 某个块翻译完成
	EventChunkComplete EventKind = "chunk_complete"

	// EventError 某个块翻译失败
	EventError EventKind = "error"

	// EventDone 整批处理结束
	EventDone EventKind = "done"
)

// BatchEvent 批量翻译的进度事件
type BatchEvent struct {
	// Kind 事件类型
	Kind EventKind `json:"event"`

	// BatchID 本次批量请求的标识
	BatchID string `json:"batch_id,omitempty"`

	// ChunkID 相关块的标识（progress/chunk_complete/error 事件携带）
	ChunkID string `json:"chunk_id,omitempty"`

	// Current 当前进度计数
	Current int `json:"current"`

	// Total 总块数
	Total int `json:"total"`

	// Chunk 翻译结果（仅 chunk_complete 事件携带）
	Chunk *TranslatedChunk `json:"translated_chunk,omitempty"`

	// Message 错误消息（仅 error 事件携带）
	Message string `json:"error_message,omitempty"`
}
