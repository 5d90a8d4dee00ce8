package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-seo-writer/pkg/adapters"
	"github.com/shouni/go-seo-writer/pkg/config"
	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/workflow"
)

const coffeeAnalysis = `Here is the analysis:
{
  "difficulty": "High",
  "difficultyReason": "Dominated by large review sites.",
  "relatedKeywords": ["espresso machine", "drip coffee maker", "bean to cup", "pod coffee machine",
    "coffee grinder", "milk frother", "budget coffee machine", "smart coffee maker", "french press"],
  "competitorTopics": ["Top picks", "Buying guide"],
  "suggestedOutline": "## Introduction\n## Best Machines\n## Buying Guide"
}`

const coffeeArticle = "# The 9 Best Coffee Machines of 2024\n\nIntro paragraph.\n\n## Best Machines\n\nDetails."

type fakeModel struct {
	mu        sync.Mutex
	block     chan struct{}
	textCalls int
}

func (f *fakeModel) GenerateText(ctx context.Context, req adapters.TextRequest) (*adapters.TextResponse, error) {
	f.mu.Lock()
	f.textCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	switch {
	case req.WebSearch:
		return &adapters.TextResponse{
			Text:    coffeeAnalysis,
			Sources: []domain.GroundingSource{{Title: "Review Site", URI: "https://reviews.example/coffee"}},
		}, nil
	case req.Format == adapters.FormatStringArray:
		return &adapters.TextResponse{Text: `["a chrome espresso machine", "a cozy kitchen with coffee"]`}, nil
	default:
		return &adapters.TextResponse{Text: coffeeArticle}, nil
	}
}

func (f *fakeModel) GenerateImage(ctx context.Context, req adapters.ImageRequest) (*adapters.ImageResponse, error) {
	return &adapters.ImageResponse{Data: []byte("\x89PNG fake"), MimeType: "image/png"}, nil
}

func newTestServer(t *testing.T, model adapters.GenerativeModel) *httptest.Server {
	t.Helper()
	catalog, err := domain.LoadCatalog()
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.RateInterval = 0
	manager, err := workflow.New(workflow.ManagerArgs{Config: cfg, AIClient: model, Catalog: catalog})
	require.NoError(t, err)

	srv, err := New(manager, time.Hour)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, u string, body any) (*http.Response, sessionResponse) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, u, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out sessionResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func waitForState(t *testing.T, base, id string, want domain.AppState) sessionResponse {
	t.Helper()
	var last sessionResponse
	require.Eventually(t, func() bool {
		_, last = doJSON(t, http.MethodGet, base+"/api/sessions/"+id, nil)
		return last.Snapshot.State == want && !last.Snapshot.ImagesBusy
	}, 5*time.Second, 10*time.Millisecond)
	return last
}

func coffeeForm() domain.FormData {
	return domain.FormData{
		Keyword:      "best coffee machines 2024",
		Language:     "English",
		WordCount:    1000,
		ArticleStyle: "Comprehensive Guide",
	}
}

func TestAPI_EndToEnd(t *testing.T) {
	ts := newTestServer(t, &fakeModel{})

	resp, created := doJSON(t, http.MethodPost, ts.URL+"/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created.ID
	assert.Equal(t, domain.StateIdle, created.Snapshot.State)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/analyze", coffeeForm())
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	review := waitForState(t, ts.URL, id, domain.StateReview)
	require.NotNil(t, review.Snapshot.Analysis)
	assert.Equal(t, domain.DifficultyHigh, review.Snapshot.Analysis.Difficulty)
	assert.Len(t, review.Snapshot.Analysis.RelatedKeywords, 9)
	assert.True(t, review.CanGenerateArticle)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/article", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	done := waitForState(t, ts.URL, id, domain.StateComplete)
	assert.True(t, strings.HasPrefix(done.Snapshot.Article, "# "))
	assert.NotEqual(t, review.Snapshot.Analysis.SuggestedOutline, done.Snapshot.Article)

	md, err := http.Get(ts.URL + "/api/sessions/" + id + "/article.md")
	require.NoError(t, err)
	defer md.Body.Close()
	assert.Equal(t, http.StatusOK, md.StatusCode)
	assert.Contains(t, md.Header.Get("Content-Disposition"), `filename="best-coffee-machines-2024.md"`)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/images", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	withImages := waitForState(t, ts.URL, id, domain.StateComplete)
	assert.Len(t, withImages.Snapshot.Images, 2)

	resp, reset := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StateIdle, reset.Snapshot.State)
	assert.Empty(t, reset.Snapshot.Form.Keyword)
	assert.Equal(t, "English", reset.Snapshot.Form.Language)
}

func TestAPI_Errors(t *testing.T) {
	model := &fakeModel{}
	ts := newTestServer(t, model)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, created := doJSON(t, http.MethodPost, ts.URL+"/api/sessions", nil)
	id := created.ID

	form := coffeeForm()
	form.Keyword = "   "
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/analyze", form)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	form = coffeeForm()
	form.WordCount = 123
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/analyze", form)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/article", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/outline", map[string]string{"outline": "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/reset", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	model.mu.Lock()
	calls := model.textCalls
	model.mu.Unlock()
	assert.Zero(t, calls)
}

func TestAPI_OutlineEditBlocksArticle(t *testing.T) {
	ts := newTestServer(t, &fakeModel{})
	_, created := doJSON(t, http.MethodPost, ts.URL+"/api/sessions", nil)
	id := created.ID
	base := ts.URL + "/api/sessions/" + id

	doJSON(t, http.MethodPost, base+"/analyze", coffeeForm())
	waitForState(t, ts.URL, id, domain.StateReview)

	resp, _ := doJSON(t, http.MethodPost, base+"/outline/edit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, edited := doJSON(t, http.MethodPut, base+"/outline", map[string]string{"outline": "## Only Section"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, edited.CanGenerateArticle)

	resp, _ = doJSON(t, http.MethodPost, base+"/article", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, saved := doJSON(t, http.MethodPost, base+"/outline/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "## Only Section", saved.Snapshot.Analysis.SuggestedOutline)
	assert.True(t, saved.CanGenerateArticle)
}

func TestAPI_Options(t *testing.T) {
	ts := newTestServer(t, &fakeModel{})
	resp, err := http.Get(ts.URL + "/api/options")
	require.NoError(t, err)
	defer resp.Body.Close()

	var catalog domain.Catalog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&catalog))
	assert.Contains(t, catalog.Languages, "English")
	assert.Equal(t, 1000, catalog.Defaults.WordCount)
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func getPage(t *testing.T, c *http.Client, u string) string {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHTML_EndToEnd(t *testing.T) {
	ts := newTestServer(t, &fakeModel{})
	browser := newBrowser(t)

	page := getPage(t, browser, ts.URL+"/")
	assert.Contains(t, page, `action="/analyze"`)

	resp, err := browser.PostForm(ts.URL+"/analyze", url.Values{
		"keyword":      {"best coffee machines 2024"},
		"language":     {"English"},
		"wordCount":    {"1000"},
		"articleStyle": {"Comprehensive Guide"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	require.Eventually(t, func() bool {
		return strings.Contains(getPage(t, browser, ts.URL+"/"), `id="generate-article"`)
	}, 5*time.Second, 10*time.Millisecond)

	page = getPage(t, browser, ts.URL+"/")
	assert.Equal(t, 9, strings.Count(page, `class="chip"`))
	assert.Contains(t, page, `<button type="submit" id="generate-article">`)
	assert.Contains(t, page, "<h2>Best Machines</h2>")
	assert.NotContains(t, page, `http-equiv="refresh"`)

	resp, err = browser.PostForm(ts.URL+"/article", nil)
	require.NoError(t, err)
	resp.Body.Close()

	require.Eventually(t, func() bool {
		return strings.Contains(getPage(t, browser, ts.URL+"/"), `id="article"`)
	}, 5*time.Second, 10*time.Millisecond)

	page = getPage(t, browser, ts.URL+"/")
	assert.Contains(t, page, "<h1>The 9 Best Coffee Machines of 2024</h1>")
	assert.Contains(t, page, "<title>The 9 Best Coffee Machines of 2024</title>")
	assert.Contains(t, page, `download="best-coffee-machines-2024.md"`)
	assert.Contains(t, page, `<button type="button" id="copy-article">Copy Text</button>`)
	assert.Contains(t, page, `<textarea readonly id="article-markdown"># The 9 Best Coffee Machines of 2024`)
	assert.Contains(t, page, "navigator.clipboard.writeText")

	dl, err := browser.Get(ts.URL + "/download/article")
	require.NoError(t, err)
	defer dl.Body.Close()
	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, coffeeArticle, string(body))
	assert.Contains(t, dl.Header.Get("Content-Disposition"), ".md")

	resp, err = browser.PostForm(ts.URL+"/images", nil)
	require.NoError(t, err)
	resp.Body.Close()

	require.Eventually(t, func() bool {
		return strings.Contains(getPage(t, browser, ts.URL+"/"), "/download/images/1")
	}, 5*time.Second, 10*time.Millisecond)

	img, err := browser.Get(ts.URL + "/download/images/0")
	require.NoError(t, err)
	defer img.Body.Close()
	assert.Equal(t, "image/png", img.Header.Get("Content-Type"))
	assert.Contains(t, img.Header.Get("Content-Disposition"), "best-coffee-machines-2024-image-1.png")

	missing, err := browser.Get(ts.URL + "/download/images/5")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHTML_BusyPageRefreshes(t *testing.T) {
	model := &fakeModel{block: make(chan struct{})}
	ts := newTestServer(t, model)
	browser := newBrowser(t)

	resp, err := browser.PostForm(ts.URL+"/analyze", url.Values{
		"keyword":      {"best coffee machines 2024"},
		"language":     {"English"},
		"wordCount":    {"1000"},
		"articleStyle": {"Comprehensive Guide"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	page := getPage(t, browser, ts.URL+"/")
	assert.Contains(t, page, fmt.Sprintf(`<meta http-equiv="refresh" content="%d">`, refreshSeconds))
	assert.Contains(t, page, "Analyzing")

	close(model.block)
	require.Eventually(t, func() bool {
		return !strings.Contains(getPage(t, browser, ts.URL+"/"), `http-equiv="refresh"`)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHTML_ValidationErrorStaysIdle(t *testing.T) {
	ts := newTestServer(t, &fakeModel{})
	browser := newBrowser(t)

	resp, err := browser.PostForm(ts.URL+"/analyze", url.Values{"keyword": {""}, "language": {"English"}})
	require.NoError(t, err)
	resp.Body.Close()

	page := getPage(t, browser, ts.URL+"/")
	assert.Contains(t, page, domain.ErrEmptyKeyword.Error())
	assert.Contains(t, page, `action="/analyze"`)
}

func TestHTML_OversizedOutlineRejected(t *testing.T) {
	ts := newTestServer(t, &fakeModel{})
	browser := newBrowser(t)

	resp, err := browser.PostForm(ts.URL+"/analyze", url.Values{
		"keyword":      {"best coffee machines 2024"},
		"language":     {"English"},
		"wordCount":    {"1000"},
		"articleStyle": {"Comprehensive Guide"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Eventually(t, func() bool {
		return strings.Contains(getPage(t, browser, ts.URL+"/"), `id="generate-article"`)
	}, 5*time.Second, 10*time.Millisecond)

	resp, err = browser.PostForm(ts.URL+"/outline/edit", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Contains(t, getPage(t, browser, ts.URL+"/"), `action="/outline/save"`)

	huge := strings.Repeat("#", maxBodyBytes+1)
	resp, err = browser.PostForm(ts.URL+"/outline/save", url.Values{"outline": {huge}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	page := getPage(t, browser, ts.URL+"/")
	assert.Contains(t, page, `action="/outline/save"`)
	assert.Contains(t, page, "## Buying Guide")
	assert.NotContains(t, page, strings.Repeat("#", 100))
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(time.Minute, func() *workflow.Controller {
		return workflow.NewController(nil, workflow.Runners{})
	})
	id, ctrl := store.Create()
	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, ctrl, got)
	assert.Equal(t, 1, store.Len())

	store.Delete(id)
	_, ok = store.Get(id)
	assert.False(t, ok)
	_, ok = store.Get("")
	assert.False(t, ok)
}
