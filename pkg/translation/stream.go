package translation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 默认块间延迟，用于缓解外部服务的请求频率限制
const (
	defaultStreamDelay = 300 * time.Millisecond
	defaultSyncDelay   = 500 * time.Millisecond
)

// Batcher 批量翻译调度器
//
// 按块序号顺序驱动执行器，向调用方发送有序的进度事件；
// 单个块的失败只产生error事件，不中止整批处理
type Batcher struct {
	executor    *Executor
	logger      *zap.Logger
	streamDelay time.Duration
	syncDelay   time.Duration
}

// NewBatcher 创建批量翻译调度器
func NewBatcher(executor *Executor, opts ...BatcherOption) *Batcher {
	options := batcherOptions{
		streamDelay: defaultStreamDelay,
		syncDelay:   defaultSyncDelay,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.logger == nil {
		options.logger = zap.NewNop()
	}

	return &Batcher{
		executor:    executor,
		logger:      options.logger,
		streamDelay: options.streamDelay,
		syncDelay:   options.syncDelay,
	}
}

// Stream 流式批量翻译
//
// 对第i个块（共N个）依次发送 progress(i,N) 事件、执行翻译，
// 成功发送 chunk_complete(i+1,N)，失败发送 error(i,N) 并继续下一个块；
// 全部处理完后发送 done(N,N) 并关闭通道。
// 上下文取消后立即停止，不再发送任何事件
func (b *Batcher) Stream(ctx context.Context, chunks []Chunk, glossary []GlossaryEntry) <-chan BatchEvent {
	events := make(chan BatchEvent, 1)
	batchID := uuid.NewString()

	go func() {
		defer close(events)

		total := len(chunks)
		completed := 0
		failed := 0

		log := b.logger.With(zap.String("batch", batchID))
		log.Info("batch translation started",
			zap.Int("chunks", total),
			zap.Int("glossary_terms", len(glossary)))

		emit := func(ev BatchEvent) bool {
			ev.BatchID = batchID
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for i, chunk := range chunks {
			if ctx.Err() != nil {
				log.Warn("batch translation canceled", zap.Int("at_chunk", i))
				return
			}

			if !emit(BatchEvent{Kind: EventProgress, ChunkID: chunk.ID, Current: i, Total: total}) {
				return
			}

			result, err := b.executor.Translate(ctx, chunk, glossary)
			if err != nil {
				if ctx.Err() != nil {
					log.Warn("batch translation canceled", zap.Int("at_chunk", i))
					return
				}
				failed++
				log.Error("chunk translation failed",
					zap.String("chunk", chunk.ID),
					zap.Error(err))
				if !emit(BatchEvent{Kind: EventError, ChunkID: chunk.ID, Current: i, Total: total, Message: err.Error()}) {
					return
				}
			} else {
				completed++
				if !emit(BatchEvent{Kind: EventChunkComplete, ChunkID: chunk.ID, Current: i + 1, Total: total, Chunk: result}) {
					return
				}
			}

			if i < total-1 && b.streamDelay > 0 {
				select {
				case <-time.After(b.streamDelay):
				case <-ctx.Done():
					log.Warn("batch translation canceled", zap.Int("at_chunk", i+1))
					return
				}
			}
		}

		emit(BatchEvent{Kind: EventDone, Current: total, Total: total})
		log.Info("batch translation finished",
			zap.Int("completed", completed),
			zap.Int("failed", failed))
	}()

	return events
}

// TranslateAll 同步批量翻译
//
// 与 Stream 相同的循环，但直接返回结果列表。
// 失败的块以可见的错误标记作为译文占位，结果列表与输入块一一对应
func (b *Batcher) TranslateAll(ctx context.Context, chunks []Chunk, glossary []GlossaryEntry) ([]TranslatedChunk, error) {
	results := make([]TranslatedChunk, 0, len(chunks))

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return results, WrapError(err, ErrCodeCanceled, "batch translation canceled")
		}

		result, err := b.executor.Translate(ctx, chunk, glossary)
		if err != nil {
			b.logger.Error("chunk translation failed",
				zap.String("chunk", chunk.ID),
				zap.Error(err))
			results = append(results, TranslatedChunk{
				ID:         chunk.ID,
				Original:   chunk.Content,
				Translated: fmt.Sprintf("[Translation Error: %v]", err),
				TermsUsed:  []TermMatch{},
			})
		} else {
			results = append(results, *result)
		}

		if i < len(chunks)-1 && b.syncDelay > 0 {
			select {
			case <-time.After(b.syncDelay):
			case <-ctx.Done():
				return results, WrapError(ctx.Err(), ErrCodeCanceled, "batch translation canceled")
			}
		}
	}

	return results, nil
}
