package broker

import (
	"context"
	"encoding/json"
	"time"
)

// OrderSide 매수/매도
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Korean 화면 표시용 이름
func (s OrderSide) Korean() string {
	if s == OrderSideSell {
		return "매도"
	}
	return "매수"
}

// Order 주문 요청
type Order struct {
	StockCode      string // 종목코드 (예: 005930)
	Quantity       int    // 주문수량
	Price          string // 주문단가 (시장가는 빈 문자열)
	TradeType      string // 매매구분 표시명 (예: 시장가)
	Exchange       string // 거래소 표시명 (KRX, KOSDAQ, SOR)
	ConditionPrice string // 조건단가
}

// OrderResult 주문 결과
type OrderResult struct {
	Success     bool
	OrderNumber string
	Message     string
	RawBody     json.RawMessage
	StatusCode  int
}

// ModifyOrder 정정 주문 요청
type ModifyOrder struct {
	Exchange            string // 거래소 표시명
	OriginalOrderNumber string // 원주문번호
	StockCode           string
	Quantity            string // 정정수량
	Price               string // 정정단가
	ConditionPrice      string // 정정조건단가
}

// ModifyResult 정정 주문 결과
type ModifyResult struct {
	Success                 bool
	OrderNumber             string
	BaseOriginalOrderNumber string // 모주문번호
	ModifyQuantity          string
	ExchangeType            string
	Message                 string
	RawBody                 json.RawMessage
	StatusCode              int
}

// TokenResult 토큰 발급 결과
type TokenResult struct {
	Success   bool
	Token     string
	TokenType string
	ExpiresAt string // YYYYMMDDHHMMSS
	Message   string
	RawBody   json.RawMessage
}

// TokenStatus 현재 토큰 상태
type TokenStatus struct {
	Token     string
	ExpiresAt string
	Mock      bool
	HasExpiry bool
	Expired   bool
	Remaining time.Duration
}

// TradeType 매매구분 표시명과 코드
type TradeType struct {
	Name string
	Code string
}

// Broker 브로커 인터페이스
type Broker interface {
	// Name 브로커 이름
	Name() string

	// 세션 관련
	SetCredentials(appKey, secretKey string, mock bool)
	SetToken(token, expiresAt string, mock bool)
	IsMock() bool

	// 토큰 관련
	IssueToken(ctx context.Context) (*TokenResult, error)
	TokenStatus() (*TokenStatus, error)

	// 주문 관련
	PlaceOrder(ctx context.Context, side OrderSide, order Order) (*OrderResult, error)
	ModifyOrder(ctx context.Context, order ModifyOrder) (*ModifyResult, error)

	// 코드표
	TradeTypes() []TradeType
	TradeTypeCode(name string) string
}
