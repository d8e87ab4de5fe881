package kiwoom

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// SessionState 세션 스냅샷
type SessionState struct {
	AppKey         string
	SecretKey      string
	Mock           bool
	AccessToken    string
	TokenExpiresAt string
}

// Host 모드에 해당하는 기본 호스트
func (s SessionState) Host(realHost, mockHost string) string {
	if s.Mock {
		return mockHost
	}
	return realHost
}

// Session 인증 정보와 토큰 보관. 프로세스당 하나를 만들어 클라이언트와 공유한다.
type Session struct {
	mu    sync.RWMutex
	state SessionState
}

// NewSession 초기 상태로 세션 생성
func NewSession(initial SessionState) *Session {
	return &Session{state: initial}
}

// Snapshot 현재 상태 복사본
func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetCredentials 앱키/시크릿키와 모드 설정. 기존 토큰은 그대로 둔다.
func (s *Session) SetCredentials(appKey, secretKey string, mock bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AppKey = appKey
	s.state.SecretKey = secretKey
	s.state.Mock = mock
}

// SetToken 외부에서 발급받은 토큰 직접 설정.
// expiresAt이 비어 있고 토큰이 exp 클레임을 가진 JWT이면 만료일시를 클레임에서 채운다.
func (s *Session) SetToken(token, expiresAt string, mock bool) {
	if expiresAt == "" {
		expiresAt = expiryFromClaims(token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = token
	s.state.TokenExpiresAt = expiresAt
	s.state.Mock = mock
}

// storeTokenFor 발급 당시 모드가 지금도 같을 때만 토큰 저장
func (s *Session) storeTokenFor(mock bool, token, expiresAt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Mock != mock {
		return false
	}
	s.state.AccessToken = token
	s.state.TokenExpiresAt = expiresAt
	return true
}

// expiryFromClaims 서명 검증 없이 exp 클레임만 읽는다
func expiryFromClaims(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ""
	}
	return formatExpiryTime(exp.Time)
}
