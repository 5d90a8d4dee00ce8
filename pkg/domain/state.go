package domain

// AppState は画面に描画するサーフェスを決める唯一の状態です。
type AppState string

const (
	StateIdle       AppState = "IDLE"
	StateAnalyzing  AppState = "ANALYZING"
	StateReview     AppState = "REVIEW"
	StateGenerating AppState = "GENERATING"
	StateComplete   AppState = "COMPLETE"
	// StateError は宣言のみで遷移先にはなりません。失敗時は直前の安定状態へ戻ります。
	StateError AppState = "ERROR"
)

// Busy は外部呼び出しの完了待ちである状態かどうかを返します。
func (s AppState) Busy() bool {
	return s == StateAnalyzing || s == StateGenerating
}
