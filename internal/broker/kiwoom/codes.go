package kiwoom

import "kiwoom-mcp/internal/broker"

const (
	RealHost = "https://api.kiwoom.com"
	MockHost = "https://mockapi.kiwoom.com"
)

// API 경로
const (
	PathToken      = "/oauth2/token"
	PathStockOrder = "/api/dostk/ordr"
)

// Operation 브로커 API 호출 종류
type Operation int

const (
	OpToken Operation = iota
	OpBuy
	OpSell
	OpModify
)

// API ID (api-id 헤더)
const (
	APIIDToken  = "au10001" // 접근토큰 발급
	APIIDBuy    = "kt10000" // 주식 매수주문
	APIIDSell   = "kt10001" // 주식 매도주문
	APIIDModify = "kt10002" // 주식 정정주문
)

// 코드표에 없는 이름이 들어왔을 때 사용하는 기본값
const (
	DefaultExchangeCode  = "KRX"
	DefaultTradeTypeCode = "3" // 시장가
)

// APIID 호출 종류별 api-id
func APIID(op Operation) string {
	switch op {
	case OpToken:
		return APIIDToken
	case OpBuy:
		return APIIDBuy
	case OpSell:
		return APIIDSell
	case OpModify:
		return APIIDModify
	default:
		return ""
	}
}

// ExchangeCode 거래소 표시명 → 국내거래소구분 코드
func ExchangeCode(name string) string {
	switch name {
	case "KRX":
		return "KRX"
	case "KOSDAQ":
		return "NXT"
	case "SOR":
		return "SOR"
	default:
		return DefaultExchangeCode
	}
}

// ExchangeNames 거래소 표시명 목록
func ExchangeNames() []string {
	return []string{"KRX", "KOSDAQ", "SOR"}
}

// TradeTypeCode 매매구분 표시명 → 매매구분 코드
func TradeTypeCode(name string) string {
	switch name {
	case "보통":
		return "0"
	case "시장가":
		return "3"
	case "조건부지정가":
		return "5"
	case "장마감후시간외":
		return "81"
	case "장시작전시간외":
		return "61"
	case "시간외단일가":
		return "62"
	case "최유리지정가":
		return "6"
	case "최우선지정가":
		return "7"
	case "보통IOC":
		return "10"
	case "시장가IOC":
		return "13"
	case "최유리IOC":
		return "16"
	case "보통FOK":
		return "20"
	case "시장가FOK":
		return "23"
	case "최유리FOK":
		return "26"
	case "스톱지정가":
		return "28"
	case "중간가":
		return "29"
	case "중간가IOC":
		return "30"
	case "중간가FOK":
		return "31"
	default:
		return DefaultTradeTypeCode
	}
}

var tradeTypeNames = []string{
	"보통", "시장가", "조건부지정가", "장마감후시간외", "장시작전시간외", "시간외단일가",
	"최유리지정가", "최우선지정가", "보통IOC", "시장가IOC", "최유리IOC", "보통FOK",
	"시장가FOK", "최유리FOK", "스톱지정가", "중간가", "중간가IOC", "중간가FOK",
}

// TradeTypes 매매구분 목록 (표시 순서 유지)
func TradeTypes() []broker.TradeType {
	types := make([]broker.TradeType, 0, len(tradeTypeNames))
	for _, name := range tradeTypeNames {
		types = append(types, broker.TradeType{Name: name, Code: TradeTypeCode(name)})
	}
	return types
}

// TradeTypeNames 매매구분 표시명 목록
func TradeTypeNames() []string {
	names := make([]string, len(tradeTypeNames))
	copy(names, tradeTypeNames)
	return names
}
