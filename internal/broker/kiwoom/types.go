package kiwoom

// Credentials 키움 API 인증 정보
type Credentials struct {
	AppKey    string
	SecretKey string
}

// TokenRequest 토큰 발급 요청 (au10001)
type TokenRequest struct {
	GrantType string `json:"grant_type"`
	AppKey    string `json:"appkey"`
	SecretKey string `json:"secretkey"`
}

// NewTokenRequest client_credentials 토큰 요청 생성
func NewTokenRequest(creds Credentials) TokenRequest {
	return TokenRequest{
		GrantType: "client_credentials",
		AppKey:    creds.AppKey,
		SecretKey: creds.SecretKey,
	}
}

// OrderPayload 매수/매도 주문 요청 (kt10000, kt10001)
type OrderPayload struct {
	DmstStexTp string `json:"dmst_stex_tp"` // 국내거래소구분
	StkCd      string `json:"stk_cd"`       // 종목코드
	OrdQty     string `json:"ord_qty"`      // 주문수량
	OrdUv      string `json:"ord_uv"`       // 주문단가 (시장가="")
	TrdeTp     string `json:"trde_tp"`      // 매매구분
	CondUv     string `json:"cond_uv"`      // 조건단가
}

// ModifyPayload 정정 주문 요청 (kt10002)
type ModifyPayload struct {
	DmstStexTp string `json:"dmst_stex_tp"` // 국내거래소구분
	OrigOrdNo  string `json:"orig_ord_no"`  // 원주문번호
	StkCd      string `json:"stk_cd"`       // 종목코드
	MdfyQty    string `json:"mdfy_qty"`     // 정정수량
	MdfyUv     string `json:"mdfy_uv"`      // 정정단가
	MdfyCondUv string `json:"mdfy_cond_uv"` // 정정조건단가
}

// 응답 필드명
const (
	fieldReturnCode    = "return_code"
	fieldReturnMsg     = "return_msg"
	fieldToken         = "token"
	fieldTokenType     = "token_type"
	fieldExpiresDt     = "expires_dt"
	fieldOrdNo         = "ord_no"
	fieldBaseOrigOrdNo = "base_orig_ord_no"
	fieldMdfyQty       = "mdfy_qty"
	fieldDmstStexTp    = "dmst_stex_tp"
)
