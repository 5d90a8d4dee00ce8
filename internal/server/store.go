package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-seo-writer/pkg/workflow"
)

const (
	defaultSessionTTL    = 2 * time.Hour
	cacheCleanupInterval = 15 * time.Minute
)

// SessionStore はセッション ID ごとの Controller をメモリ上に保持します。
// 最終アクセスから TTL が経過したセッションは破棄されます。
type SessionStore struct {
	sessions *cache.Cache
	ttl      time.Duration
	factory  func() *workflow.Controller
}

// NewSessionStore は SessionStore を生成します。ttl が 0 以下の場合は既定値を使います。
func NewSessionStore(ttl time.Duration, factory func() *workflow.Controller) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		sessions: cache.New(ttl, cacheCleanupInterval),
		ttl:      ttl,
		factory:  factory,
	}
}

// Create は新しいセッションを作成して ID と Controller を返します。
func (s *SessionStore) Create() (string, *workflow.Controller) {
	id := uuid.NewString()
	ctrl := s.factory()
	s.sessions.Set(id, ctrl, s.ttl)
	return id, ctrl
}

// Get は ID に対応する Controller を返し、有効期限を延長します。
func (s *SessionStore) Get(id string) (*workflow.Controller, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	ctrl, ok := v.(*workflow.Controller)
	if !ok {
		return nil, false
	}
	s.sessions.Set(id, ctrl, s.ttl)
	return ctrl, true
}

// Delete はセッションを破棄します。
func (s *SessionStore) Delete(id string) {
	s.sessions.Delete(id)
}

// Len は保持しているセッション数を返します。
func (s *SessionStore) Len() int {
	return s.sessions.ItemCount()
}
