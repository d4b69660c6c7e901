package usda

import (
	"testing"
	"time"
)

// TestQuotaLimiter_AllowsUpToPerMinute は分間上限までのリクエストが許可され、
// 上限超過分が拒否されることを検証する。
func TestQuotaLimiter_AllowsUpToPerMinute(t *testing.T) {
	l := newQuotaLimiter(3, 100)

	for i := 0; i < 3; i++ {
		if !l.allow() {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.allow() {
		t.Error("request over the per-minute limit should be rejected")
	}
}

// TestQuotaLimiter_WindowSlides は60秒経過後に枠が回復することを検証する。
func TestQuotaLimiter_WindowSlides(t *testing.T) {
	l := newQuotaLimiter(2, 100)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	l.now = func() time.Time { return current }

	if !l.allow() || !l.allow() {
		t.Fatal("first two requests should be allowed")
	}
	if l.allow() {
		t.Fatal("third request inside the window should be rejected")
	}

	// 61秒後にはウィンドウ内のタイムスタンプが消える
	current = base.Add(61 * time.Second)
	if !l.allow() {
		t.Error("request after the window slides should be allowed")
	}
}

// TestQuotaLimiter_HourlyQuota は分間枠が残っていても時間あたりの上限で
// 拒否されることを検証する。
func TestQuotaLimiter_HourlyQuota(t *testing.T) {
	l := newQuotaLimiter(10, 3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	l.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		// 分間枠を回復させながら時間枠を消費する
		current = base.Add(time.Duration(i*2) * time.Minute)
		if !l.allow() {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	current = base.Add(10 * time.Minute)
	if l.allow() {
		t.Error("request over the hourly quota should be rejected")
	}

	// 1時間経過で時間ウィンドウがロールオーバーする
	current = base.Add(61 * time.Minute)
	if !l.allow() {
		t.Error("request after the hourly window rolls over should be allowed")
	}
}

// TestQuotaLimiter_RejectionDoesNotConsume は拒否されたリクエストが
// 枠を消費しないことを検証する。
func TestQuotaLimiter_RejectionDoesNotConsume(t *testing.T) {
	l := newQuotaLimiter(1, 1)

	if !l.allow() {
		t.Fatal("first request should be allowed")
	}
	l.allow()
	l.allow()

	l.reset()
	if !l.allow() {
		t.Error("request after reset should be allowed")
	}
}
