// Package tools declares the trading tools exposed to MCP clients and turns
// tool calls into broker operations and Korean user-facing messages.
package tools

import "kiwoom-mcp/internal/broker/kiwoom"

// 도구 이름
const (
	SetCredentials   = "set_credentials"
	GetAccessToken   = "get_access_token"
	SetAccessToken   = "set_access_token"
	CheckTokenStatus = "check_token_status"
	StockBuyOrder    = "stock_buy_order"
	StockSellOrder   = "stock_sell_order"
	StockModifyOrder = "stock_modify_order"
	GetTradeTypes    = "get_trade_types"
)

// ParamType 인자 타입
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeBoolean ParamType = "boolean"
	TypeInteger ParamType = "integer"
)

// Param 도구 인자 선언
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Enum        []string
	Default     any
}

// Definition 도구 선언
type Definition struct {
	Name        string
	Description string
	Params      []Param
}

// Definitions 모든 도구 선언 (목록 순서 유지)
func Definitions() []Definition {
	return []Definition{
		{
			Name:        SetCredentials,
			Description: "키움증권 API 앱키와 시크릿키 설정",
			Params: []Param{
				{Name: "appkey", Type: TypeString, Description: "키움증권 앱키", Required: true},
				{Name: "secretkey", Type: TypeString, Description: "키움증권 시크릿키", Required: true},
				{Name: "is_mock", Type: TypeBoolean, Description: "모의투자 여부 (기본값: false)", Default: false},
			},
		},
		{
			Name:        GetAccessToken,
			Description: "키움증권 API 접근 토큰 발급 (au10001)",
		},
		{
			Name:        SetAccessToken,
			Description: "키움증권 API 접근 토큰 직접 설정 (이미 발급받은 토큰 사용)",
			Params: []Param{
				{Name: "token", Type: TypeString, Description: "키움증권 API 접근 토큰", Required: true},
				{Name: "expires_dt", Type: TypeString, Description: "토큰 만료일시 (YYYYMMDDHHMMSS 형식)", Default: ""},
				{Name: "is_mock", Type: TypeBoolean, Description: "모의투자 여부 (기본값: false)", Default: false},
			},
		},
		{
			Name:        CheckTokenStatus,
			Description: "현재 토큰 상태 및 만료시간 확인",
		},
		{
			Name:        StockBuyOrder,
			Description: "주식 매수 주문 (kt10000)",
			Params:      orderParams(),
		},
		{
			Name:        StockSellOrder,
			Description: "주식 매도 주문 (kt10001)",
			Params:      orderParams(),
		},
		{
			Name:        StockModifyOrder,
			Description: "주식 정정 주문 (kt10002)",
			Params: []Param{
				{Name: "exchange", Type: TypeString, Description: "거래소구분", Enum: kiwoom.ExchangeNames(), Default: "KRX"},
				{Name: "original_order_number", Type: TypeString, Description: "원주문번호", Required: true},
				{Name: "stock_code", Type: TypeString, Description: "종목코드 (예: 005930)", Required: true},
				{Name: "modify_quantity", Type: TypeString, Description: "정정수량", Required: true},
				{Name: "modify_price", Type: TypeString, Description: "정정단가", Required: true},
				{Name: "modify_condition_price", Type: TypeString, Description: "정정조건단가", Default: ""},
			},
		},
		{
			Name:        GetTradeTypes,
			Description: "사용 가능한 매매구분 목록 조회",
		},
	}
}

func orderParams() []Param {
	return []Param{
		{Name: "stock_code", Type: TypeString, Description: "종목코드 (예: 005930)", Required: true},
		{Name: "quantity", Type: TypeInteger, Description: "주문수량", Required: true},
		{Name: "price", Type: TypeString, Description: "주문단가 (시장가의 경우 빈 문자열)", Default: ""},
		{Name: "trade_type", Type: TypeString, Description: "매매구분", Enum: kiwoom.TradeTypeNames(), Default: "시장가"},
		{Name: "exchange", Type: TypeString, Description: "거래소구분", Enum: kiwoom.ExchangeNames(), Default: "KRX"},
		{Name: "condition_price", Type: TypeString, Description: "조건단가", Default: ""},
	}
}
