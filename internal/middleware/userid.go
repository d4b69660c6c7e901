// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// userIDHeader は外部認証基盤が付与するユーザーIDヘッダー。
// 認証そのものは上流のゲートウェイが担い、本サービスは検証済みの
// IDを信頼して受け取る。
const userIDHeader = "X-User-ID"

type contextKey string

const userIDContextKey contextKey = "user_id"

// ErrNoUserID はコンテキストにユーザーIDが存在しないことを示す。
var ErrNoUserID = errors.New("ユーザーIDがコンテキストに存在しません")

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", ErrNoUserID
	}
	return userID, nil
}

// ContextWithUserID はユーザーIDを保持するコンテキストを返す。テスト用。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// NewUserIDMiddleware はX-User-IDヘッダーからユーザーIDを取り出して
// コンテキストへ格納するミドルウェアを返す。
// ヘッダーがないリクエストは401で拒否する。
func NewUserIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(userIDHeader))
			if userID == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
