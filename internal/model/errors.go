package model

import (
	"errors"
	"fmt"
)

// ErrorCategory はエラーの原因カテゴリを表す。
// 呼び出し元のリトライ判断とHTTPステータスへのマッピングに使用する。
type ErrorCategory string

const (
	// CategoryValidation は呼び出し側の入力不正。リトライ不可。
	CategoryValidation ErrorCategory = "validation"
	// CategoryNotFound は対象リソースの不在。型付きの不在として返す。
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryRateLimit はプロバイダのクォータ枯渇。呼び出し側がバックオフすべき。
	CategoryRateLimit ErrorCategory = "rate_limit"
	// CategoryExternal は外部API連携の失敗（通信またはプロバイダ側エラー）。
	CategoryExternal ErrorCategory = "external"
	// CategoryComputation は導出式への不正入力（マクロ比率の合計不一致など）。
	CategoryComputation ErrorCategory = "computation"
	// CategorySystem は内部エラー。
	CategorySystem ErrorCategory = "system"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。下位エラーはErrに保持する。
type APIError struct {
	Code     string        // エラーコード
	Message  string        // エラーメッセージ
	Category ErrorCategory // 原因カテゴリ
	Action   string        // ユーザー向け対処方法
	Err      error         // 下位エラー（ある場合）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は下位エラーを返す。errors.Is / errors.As に対応する。
func (e *APIError) Unwrap() error {
	return e.Err
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeEmptyQuery        = "EMPTY_QUERY"
	ErrCodeFoodNotFound      = "FOOD_NOT_FOUND"
	ErrCodeEntryNotFound     = "ENTRY_NOT_FOUND"
	ErrCodeGoalsNotFound     = "GOALS_NOT_FOUND"
	ErrCodeGoalsAlreadyExist = "GOALS_ALREADY_EXIST"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeProviderTransport = "PROVIDER_TRANSPORT_ERROR"
	ErrCodeProviderStatus    = "PROVIDER_STATUS_ERROR"
	ErrCodeMacroDistribution = "MACRO_DISTRIBUTION_INVALID"
	ErrCodeUnsafeImageURL    = "UNSAFE_IMAGE_URL"
)

// CategoryOf はエラーのカテゴリを返す。
// APIErrorでないエラーはすべてCategorySystemとして扱う。
func CategoryOf(err error) ErrorCategory {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Category
	}
	return CategorySystem
}

// NewValidationError は入力不正エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  message,
		Category: CategoryValidation,
		Action:   "入力値を確認してください。",
	}
}

// NewEmptyQueryError は検索クエリ未指定エラーを生成する。
func NewEmptyQueryError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyQuery,
		Message:  "検索クエリが指定されていません。",
		Category: CategoryValidation,
		Action:   "検索キーワードを入力してください。",
	}
}

// NewFoodNotFoundError は食品未検出エラーを生成する。
func NewFoodNotFoundError(foodID string) *APIError {
	return &APIError{
		Code:     ErrCodeFoodNotFound,
		Message:  fmt.Sprintf("指定された食品が見つかりません: %s", foodID),
		Category: CategoryNotFound,
		Action:   "食品IDを確認してください。",
	}
}

// NewEntryNotFoundError は食事記録エントリ未検出エラーを生成する。
func NewEntryNotFoundError(entryID string) *APIError {
	return &APIError{
		Code:     ErrCodeEntryNotFound,
		Message:  fmt.Sprintf("指定された食事記録が見つかりません: %s", entryID),
		Category: CategoryNotFound,
		Action:   "記録IDと日付を確認してください。",
	}
}

// NewGoalsNotFoundError は栄養目標未設定エラーを生成する。
func NewGoalsNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeGoalsNotFound,
		Message:  "栄養目標が設定されていません。",
		Category: CategoryNotFound,
		Action:   "先に栄養目標のセットアップを実行してください。",
	}
}

// NewGoalsAlreadyExistError は栄養目標の重複作成エラーを生成する。
// ユーザーごとに栄養目標は1件のみ作成できる。
func NewGoalsAlreadyExistError() *APIError {
	return &APIError{
		Code:     ErrCodeGoalsAlreadyExist,
		Message:  "このユーザーの栄養目標は既に存在します。",
		Category: CategoryValidation,
		Action:   "既存の目標を更新してください。",
	}
}

// NewRateLimitExceededError はプロバイダのクォータ枯渇エラーを生成する。
// このコアは自動リトライを行わない。呼び出し側がバックオフする。
func NewRateLimitExceededError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  fmt.Sprintf("%s APIのレート制限に達しました。", provider),
		Category: CategoryRateLimit,
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewProviderTransportError は外部APIへの通信失敗エラーを生成する。
// 接続不可・タイムアウトなど、レスポンスを受信できなかった場合に使用する。
func NewProviderTransportError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeProviderTransport,
		Message:  "外部栄養データベースへの接続に失敗しました。",
		Category: CategoryExternal,
		Action:   "ネットワーク接続を確認し、しばらく待ってから再度お試しください。",
		Err:      cause,
	}
}

// NewProviderStatusError は外部APIのエラーステータス応答を生成する。
// 非2xxレスポンスを受信した場合に使用し、ステータスコードを保持する。
func NewProviderStatusError(statusCode int) *APIError {
	return &APIError{
		Code:     ErrCodeProviderStatus,
		Message:  fmt.Sprintf("外部栄養データベースがステータス %d を返しました。", statusCode),
		Category: CategoryExternal,
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewMacroDistributionError はマクロ栄養素比率の不正エラーを生成する。
func NewMacroDistributionError(total float64) *APIError {
	return &APIError{
		Code:     ErrCodeMacroDistribution,
		Message:  fmt.Sprintf("マクロ栄養素の比率の合計が100%%ではありません: %.1f%%", total),
		Category: CategoryComputation,
		Action:   "タンパク質・炭水化物・脂質の比率の合計が100になるように指定してください。",
	}
}

// NewUnsafeImageURLError は安全でない画像URLエラーを生成する。
func NewUnsafeImageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsafeImageURL,
		Message:  fmt.Sprintf("指定された画像URLは許可されていません: %s", reason),
		Category: CategoryValidation,
		Action:   "公開されているWebサイトの http:// または https:// URLを指定してください。",
	}
}
