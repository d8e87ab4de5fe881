package kiwoom

import (
	"context"
	"time"

	"kiwoom-mcp/internal/broker"
)

// Tokens 접근토큰 발급과 만료 관리
type Tokens struct {
	session *Session
	client  *Client
}

// NewTokens 토큰 관리자 생성
func NewTokens(session *Session, client *Client) *Tokens {
	return &Tokens{
		session: session,
		client:  client,
	}
}

// Issue 세션의 앱키/시크릿키로 토큰 발급. 성공하면 세션에 토큰과 만료일시를 저장한다.
// 발급 중 모드가 바뀌었으면 다른 환경의 토큰이므로 저장하지 않는다.
// 브로커가 거절한 경우(return_code != 0)는 에러가 아니라 Success=false 결과로 돌려준다.
func (t *Tokens) Issue(ctx context.Context) (*broker.TokenResult, error) {
	state := t.session.Snapshot()
	if state.AppKey == "" || state.SecretKey == "" {
		return nil, &broker.ConfigError{Field: "appkey/secretkey"}
	}

	req := NewTokenRequest(Credentials{AppKey: state.AppKey, SecretKey: state.SecretKey})
	raw, err := t.client.IssueToken(ctx, t.client.HostFor(state), req)
	if err != nil {
		t.client.logger.Error("token request failed", "error", err)
		return nil, &broker.AuthError{Op: "token request failed", Err: err}
	}

	result := InterpretTokenResponse(raw)
	if result.Success {
		if t.session.storeTokenFor(state.Mock, result.Token, result.ExpiresAt) {
			t.client.logger.Info("access token issued", "mock", state.Mock, "expires_at", result.ExpiresAt)
		} else {
			t.client.logger.Warn("mode changed while issuing token, token not stored", "issued_for_mock", state.Mock)
		}
	} else {
		t.client.logger.Warn("token request rejected", "message", result.Message)
	}
	return result, nil
}

// Status 현재 토큰 상태
func (t *Tokens) Status() (*broker.TokenStatus, error) {
	return tokenStatusAt(t.session.Snapshot(), time.Now())
}

func tokenStatusAt(state SessionState, now time.Time) (*broker.TokenStatus, error) {
	if state.AccessToken == "" {
		return nil, &broker.ConfigError{Field: "access token"}
	}

	status := &broker.TokenStatus{
		Token:     state.AccessToken,
		ExpiresAt: state.TokenExpiresAt,
		Mock:      state.Mock,
		HasExpiry: state.TokenExpiresAt != "",
	}
	if status.HasExpiry {
		remaining, ok := RemainingAt(state.TokenExpiresAt, now)
		status.Expired = !ok
		status.Remaining = remaining
	}
	return status, nil
}

// usable 주문에 쓸 토큰. 토큰이 없으면 ConfigError, 만료일시가 있고 지났으면 ErrTokenExpired.
func usable(state SessionState, now time.Time) (string, error) {
	if state.AccessToken == "" {
		return "", &broker.ConfigError{Field: "access token"}
	}
	if state.TokenExpiresAt != "" && IsExpiredAt(state.TokenExpiresAt, now) {
		return "", &broker.AuthError{Op: "validate token", Err: broker.ErrTokenExpired}
	}
	return state.AccessToken, nil
}

// InterpretTokenResponse 토큰 응답 해석. return_code가 0일 때만 성공.
func InterpretTokenResponse(raw *RawResponse) *broker.TokenResult {
	if code, ok := raw.returnCode(); ok && code == 0 {
		return &broker.TokenResult{
			Success:   true,
			Token:     raw.str(fieldToken),
			TokenType: raw.str(fieldTokenType),
			ExpiresAt: raw.str(fieldExpiresDt),
			Message:   raw.str(fieldReturnMsg),
			RawBody:   raw.Body,
		}
	}

	msg := raw.str(fieldReturnMsg)
	if msg == "" {
		msg = "Unknown error"
	}
	return &broker.TokenResult{
		Success: false,
		Message: msg,
		RawBody: raw.Body,
	}
}
