// Package keypool 管理一组可互换的API密钥，配额耗尽时轮换到下一个
package keypool

import "sync"

// Pool 密钥池
//
// 池是进程级共享状态，可能被多个并发的翻译请求读取和轮换，
// 所有方法都持锁执行，避免读到轮换中途的下标
type Pool struct {
	mu       sync.RWMutex
	keys     []string
	current  int
	fallback string
}

// New 创建密钥池，空密钥会被过滤
func New(keys []string) *Pool {
	p := &Pool{}
	p.Configure(keys)
	return p
}

// Configure 替换池中的密钥并将当前下标重置为0
func (p *Pool) Configure(keys []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.keys = p.keys[:0]
	for _, key := range keys {
		if key != "" {
			p.keys = append(p.keys, key)
		}
	}
	p.current = 0
}

// SetFallback 设置池为空时使用的静态密钥
func (p *Pool) SetFallback(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fallback = key
}

// Current 返回当前生效的密钥
// 池非空时返回当前下标处的密钥；池为空时回退到静态密钥；都没有时返回false
func (p *Pool) Current() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.keys) > 0 {
		return p.keys[p.current], true
	}
	if p.fallback != "" {
		return p.fallback, true
	}
	return "", false
}

// Rotate 轮换到下一个密钥
// 池大小不超过1时不做任何改变并返回false，否则前进下标并返回true，
// 之后的 Current 调用都会返回新密钥
func (p *Pool) Rotate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) <= 1 {
		return false
	}

	p.current = (p.current + 1) % len(p.keys)
	return true
}

// Len 返回池中密钥数量
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.keys)
}
