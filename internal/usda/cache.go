package usda

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// cacheEntry はキャッシュ済みレスポンス1件を保持する。
type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// responseCache は正規化済みプロバイダレスポンスのTTLキャッシュ。
// キーはリクエストの種類とパラメータから構築され、
// 期限切れエントリはバックグラウンドで定期的に削除される。
type responseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	stopCh  chan struct{}
}

// newResponseCache は指定TTLのキャッシュを作成し、クリーンアップゴルーチンを開始する。
func newResponseCache(ttl time.Duration) *responseCache {
	c := &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// get はキーに対応する未期限切れの値を返す。
// 期限切れエントリはこの時点で削除される。
func (c *responseCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// set は値をTTL付きで保存する。既存エントリは上書きされる。
func (c *responseCache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// reset は全エントリを破棄する。テストおよび運用時の手動無効化用。
func (c *responseCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// len は現在のエントリ数を返す。
func (c *responseCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// close はクリーンアップゴルーチンを停止する。
func (c *responseCache) close() {
	close(c.stopCh)
}

// cleanupLoop は期限切れエントリを定期的に削除する。
func (c *responseCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *responseCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// searchCacheKey は検索リクエストのキャッシュキーを構築する。
// クエリは大文字小文字を区別せず同一視する。
func searchCacheKey(query string, pageSize int) string {
	return fmt.Sprintf("search:%s:%d", strings.ToLower(strings.TrimSpace(query)), pageSize)
}

// detailCacheKey は詳細取得リクエストのキャッシュキーを構築する。
func detailCacheKey(fdcID int64) string {
	return fmt.Sprintf("detail:%d", fdcID)
}
