package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shouni/go-seo-writer/pkg/domain"
)

var (
	// ErrInvalidTransition は現在の状態では受け付けない操作を要求した場合のエラーです。
	ErrInvalidTransition = errors.New("action not allowed in current state")
	// ErrOutlineEditing はアウトライン編集中に記事生成を要求した場合のエラーです。
	ErrOutlineEditing = errors.New("outline is being edited: save or cancel first")
	// ErrNotEditing は編集モードでないのに下書きを操作した場合のエラーです。
	ErrNotEditing = errors.New("outline is not being edited")
	// ErrImagesInProgress は挿絵の生成中に再度生成を要求した場合のエラーです。
	ErrImagesInProgress = errors.New("image generation already in progress")
	// ErrStaleResult はリセット後に届いた応答を破棄した場合に完了チャネルへ送られます。
	ErrStaleResult = errors.New("result discarded after reset")
)

// Snapshot は描画用に複製した Controller の状態です。
type Snapshot struct {
	State      domain.AppState         `json:"state"`
	Form       domain.FormData         `json:"form"`
	Analysis   *domain.AnalysisData    `json:"analysis,omitempty"`
	Article    string                  `json:"article,omitempty"`
	Images     []domain.GeneratedImage `json:"images"`
	Error      string                  `json:"error,omitempty"`
	Editing    bool                    `json:"editing"`
	Draft      string                  `json:"draft,omitempty"`
	ImagesBusy bool                    `json:"imagesBusy"`
}

// CanGenerateArticle は記事生成ボタンを有効にできるかを返します。
func (s Snapshot) CanGenerateArticle() bool {
	return s.State == domain.StateReview && !s.Editing && s.Analysis != nil
}

// Busy は外部呼び出しの応答待ちかを返します。
func (s Snapshot) Busy() bool {
	return s.State.Busy() || s.ImagesBusy
}

// Controller は1セッション分の状態機械です。
// 外部呼び出しは goroutine で実行し、完了時にエポックを照合して
// リセット後に届いた古い応答は破棄します。
type Controller struct {
	catalog *domain.Catalog
	runners Runners

	mu         sync.Mutex
	state      domain.AppState
	form       domain.FormData
	analysis   *domain.AnalysisData
	article    string
	images     []domain.GeneratedImage
	errMsg     string
	editing    bool
	draft      string
	imagesBusy bool
	epoch      uint64
}

// NewController は IDLE 状態の Controller を生成します。catalog が nil の場合はキーワードのみ検証します。
func NewController(catalog *domain.Catalog, runners Runners) *Controller {
	c := &Controller{
		catalog: catalog,
		runners: runners,
		state:   domain.StateIdle,
	}
	if catalog != nil {
		c.form = catalog.DefaultForm()
	}
	return c
}

// Snapshot は現在の状態の複製を返します。
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:      c.state,
		Form:       c.form,
		Article:    c.article,
		Images:     append([]domain.GeneratedImage{}, c.images...),
		Error:      c.errMsg,
		Editing:    c.editing,
		Draft:      c.draft,
		ImagesBusy: c.imagesBusy,
	}
	if c.analysis != nil {
		a := c.analysis.Clone()
		s.Analysis = &a
	}
	return s
}

// UpdateForm は IDLE 状態でフォームの入力値を保持します。検証は Analyze 時に行います。
func (c *Controller) UpdateForm(form domain.FormData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.StateIdle {
		return ErrInvalidTransition
	}
	c.form = form
	return nil
}

// Analyze はフォームを検証して ANALYZING に遷移し、分析を非同期に開始します。
// 検証に失敗した場合は遷移も外部呼び出しも行いません。
// 戻り値のチャネルには分析の結果（破棄された場合は ErrStaleResult）が1回だけ送られます。
func (c *Controller) Analyze(ctx context.Context, form domain.FormData) (<-chan error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, ok := Transition(c.state, ActionSubmit)
	if !ok {
		return nil, ErrInvalidTransition
	}
	form.Keyword = strings.TrimSpace(form.Keyword)
	c.form = form
	if err := form.Validate(c.catalog); err != nil {
		c.errMsg = err.Error()
		return nil, err
	}

	c.state = next
	c.errMsg = ""
	epoch := c.epoch
	done := make(chan error, 1)

	bg := context.WithoutCancel(ctx)
	go func() {
		result, err := c.runners.Analysis.Run(bg, form)
		done <- c.finishAnalysis(bg, epoch, result, err)
		close(done)
	}()
	return done, nil
}

func (c *Controller) finishAnalysis(ctx context.Context, epoch uint64, result domain.AnalysisData, runErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.state != domain.StateAnalyzing {
		slog.DebugContext(ctx, "Discarding stale analysis result", "epoch", epoch, "current", c.epoch)
		return ErrStaleResult
	}
	if runErr != nil {
		c.state, _ = Transition(c.state, ActionAnalysisFailed)
		c.errMsg = runErr.Error()
		return runErr
	}
	c.state, _ = Transition(c.state, ActionAnalysisSucceeded)
	c.analysis = &result
	return nil
}

// BeginEdit はアウトラインを下書きバッファに複製して編集モードに入ります。
// 既に編集中の場合は下書きを保持したまま何もしません。
func (c *Controller) BeginEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.StateReview || c.analysis == nil {
		return ErrInvalidTransition
	}
	if c.editing {
		return nil
	}
	c.editing = true
	c.draft = c.analysis.SuggestedOutline
	return nil
}

// UpdateDraft は下書きバッファを置き換えます。
func (c *Controller) UpdateDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return ErrNotEditing
	}
	c.draft = text
	return nil
}

// SaveEdit は下書きをそのままアウトラインに反映して編集モードを終えます。
func (c *Controller) SaveEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return ErrNotEditing
	}
	c.analysis.SuggestedOutline = c.draft
	c.editing = false
	c.draft = ""
	return nil
}

// CancelEdit は下書きを捨てて編集モードを終えます。
func (c *Controller) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return ErrNotEditing
	}
	c.editing = false
	c.draft = ""
	return nil
}

// GenerateArticle は GENERATING に遷移し、記事生成を非同期に開始します。
// アウトライン編集中は ErrOutlineEditing を返します。
func (c *Controller) GenerateArticle(ctx context.Context) (<-chan error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing {
		return nil, ErrOutlineEditing
	}
	next, ok := Transition(c.state, ActionGenerateArticle)
	if !ok || c.analysis == nil {
		return nil, ErrInvalidTransition
	}

	c.state = next
	c.errMsg = ""
	epoch := c.epoch
	form := c.form
	analysis := c.analysis.Clone()
	done := make(chan error, 1)

	bg := context.WithoutCancel(ctx)
	go func() {
		article, err := c.runners.Article.Run(bg, form, analysis)
		done <- c.finishArticle(bg, epoch, article, err)
		close(done)
	}()
	return done, nil
}

func (c *Controller) finishArticle(ctx context.Context, epoch uint64, article string, runErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.state != domain.StateGenerating {
		slog.DebugContext(ctx, "Discarding stale article result", "epoch", epoch, "current", c.epoch)
		return ErrStaleResult
	}
	if runErr != nil {
		c.state, _ = Transition(c.state, ActionArticleFailed)
		c.errMsg = runErr.Error()
		return runErr
	}
	c.state, _ = Transition(c.state, ActionArticleSucceeded)
	c.article = article
	c.images = nil
	return nil
}

// GenerateImages は COMPLETE 状態で挿絵の生成を非同期に開始します。状態は COMPLETE のままです。
func (c *Controller) GenerateImages(ctx context.Context) (<-chan error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.StateComplete || c.analysis == nil {
		return nil, ErrInvalidTransition
	}
	if c.imagesBusy {
		return nil, ErrImagesInProgress
	}

	c.imagesBusy = true
	c.errMsg = ""
	epoch := c.epoch
	keyword := c.form.Keyword
	outline := c.analysis.SuggestedOutline
	done := make(chan error, 1)

	bg := context.WithoutCancel(ctx)
	go func() {
		images, err := c.runners.Image.Run(bg, keyword, outline)
		done <- c.finishImages(bg, epoch, images, err)
		close(done)
	}()
	return done, nil
}

func (c *Controller) finishImages(ctx context.Context, epoch uint64, images []domain.GeneratedImage, runErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.state != domain.StateComplete {
		slog.DebugContext(ctx, "Discarding stale image result", "epoch", epoch, "current", c.epoch)
		return ErrStaleResult
	}
	c.imagesBusy = false
	if runErr != nil {
		c.errMsg = runErr.Error()
		return runErr
	}
	if len(images) > domain.MaxImagesPerArticle {
		images = images[:domain.MaxImagesPerArticle]
	}
	c.images = images
	return nil
}

// Reset は IDLE に戻り、キーワード・補足資料・分析・記事・挿絵を破棄します。
// 言語・文字数・文体の選択は保持します。応答待ちの呼び出しは取り消さず、届いた結果を破棄します。
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, ok := Transition(c.state, ActionReset)
	if !ok {
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, c.state)
	}

	c.epoch++
	c.state = next
	c.form = domain.FormData{
		Language:     c.form.Language,
		WordCount:    c.form.WordCount,
		ArticleStyle: c.form.ArticleStyle,
	}
	c.analysis = nil
	c.article = ""
	c.images = nil
	c.errMsg = ""
	c.editing = false
	c.draft = ""
	c.imagesBusy = false
	return nil
}
