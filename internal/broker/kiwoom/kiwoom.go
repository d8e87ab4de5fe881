// Package kiwoom implements broker.Broker against the Kiwoom Securities REST API.
package kiwoom

import (
	"context"

	"kiwoom-mcp/internal/broker"
)

var _ broker.Broker = (*Broker)(nil)

// Broker 키움증권 브로커
type Broker struct {
	session *Session
	client  *Client
	tokens  *Tokens
	orders  *Orders
}

// New 세션을 공유하는 클라이언트/토큰/주문 처리기를 묶어 생성
func New(session *Session, opts ...ClientOption) *Broker {
	client := NewClient(opts...)
	return &Broker{
		session: session,
		client:  client,
		tokens:  NewTokens(session, client),
		orders:  NewOrders(session, client),
	}
}

// Name 브로커 이름
func (b *Broker) Name() string {
	return "kiwoom"
}

// Session 공유 세션
func (b *Broker) Session() *Session {
	return b.session
}

// SetCredentials 앱키/시크릿키 설정
func (b *Broker) SetCredentials(appKey, secretKey string, mock bool) {
	b.session.SetCredentials(appKey, secretKey, mock)
}

// SetToken 토큰 직접 설정
func (b *Broker) SetToken(token, expiresAt string, mock bool) {
	b.session.SetToken(token, expiresAt, mock)
}

// IsMock 모의투자 여부
func (b *Broker) IsMock() bool {
	return b.session.Snapshot().Mock
}

// IssueToken 접근토큰 발급
func (b *Broker) IssueToken(ctx context.Context) (*broker.TokenResult, error) {
	return b.tokens.Issue(ctx)
}

// TokenStatus 토큰 상태
func (b *Broker) TokenStatus() (*broker.TokenStatus, error) {
	return b.tokens.Status()
}

// PlaceOrder 매수/매도 주문
func (b *Broker) PlaceOrder(ctx context.Context, side broker.OrderSide, order broker.Order) (*broker.OrderResult, error) {
	return b.orders.Place(ctx, side, order)
}

// ModifyOrder 정정 주문
func (b *Broker) ModifyOrder(ctx context.Context, order broker.ModifyOrder) (*broker.ModifyResult, error) {
	return b.orders.Modify(ctx, order)
}

// TradeTypes 매매구분 목록
func (b *Broker) TradeTypes() []broker.TradeType {
	return TradeTypes()
}

// TradeTypeCode 매매구분 코드
func (b *Broker) TradeTypeCode(name string) string {
	return TradeTypeCode(name)
}
