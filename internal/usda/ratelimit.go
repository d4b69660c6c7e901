package usda

import (
	"sync"
	"time"
)

// quotaLimiter は外部プロバイダへの送信リクエスト数を制限する。
// 直近60秒のスライディングウィンドウと1時間単位の固定ウィンドウの
// 両方を超えないことを保証する。上限到達時はブロックせず即座に拒否する。
type quotaLimiter struct {
	mu         sync.Mutex
	perMinute  int
	perHour    int
	timestamps []time.Time // 直近60秒以内のリクエスト時刻
	hourStart  time.Time
	hourCount  int
	now        func() time.Time
}

// newQuotaLimiter は分間・時間あたりの上限を持つリミッタを作成する。
func newQuotaLimiter(perMinute, perHour int) *quotaLimiter {
	return &quotaLimiter{
		perMinute: perMinute,
		perHour:   perHour,
		now:       time.Now,
	}
}

// allow はリクエスト1件分の枠を消費できる場合にtrueを返す。
// 枠がない場合はfalseを返し、状態は変更しない。
func (l *quotaLimiter) allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// 時間ウィンドウのロールオーバー
	if l.hourStart.IsZero() || now.Sub(l.hourStart) >= time.Hour {
		l.hourStart = now
		l.hourCount = 0
	}
	if l.hourCount >= l.perHour {
		return false
	}

	// 60秒より古いタイムスタンプを除去
	cutoff := now.Add(-time.Minute)
	kept := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.timestamps = kept

	if len(l.timestamps) >= l.perMinute {
		return false
	}

	l.timestamps = append(l.timestamps, now)
	l.hourCount++
	return true
}

// reset は消費済みの枠をすべて解放する。テスト用。
func (l *quotaLimiter) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = nil
	l.hourStart = time.Time{}
	l.hourCount = 0
}
