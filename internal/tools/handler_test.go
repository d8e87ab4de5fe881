package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kiwoom-mcp/internal/broker"
	"kiwoom-mcp/internal/broker/kiwoom"
)

// fakeBroker broker.Broker 대역
type fakeBroker struct {
	appKey, secretKey string
	token, expiresAt  string
	mock              bool

	issueResult *broker.TokenResult
	issueErr    error
	status      *broker.TokenStatus
	statusErr   error
	orderResult *broker.OrderResult
	modifyRes   *broker.ModifyResult
	orderErr    error

	lastSide   broker.OrderSide
	lastOrder  broker.Order
	lastModify broker.ModifyOrder
	panicOn    string
}

func (f *fakeBroker) Name() string { return "fake" }

func (f *fakeBroker) SetCredentials(appKey, secretKey string, mock bool) {
	f.appKey, f.secretKey, f.mock = appKey, secretKey, mock
}

func (f *fakeBroker) SetToken(token, expiresAt string, mock bool) {
	f.token, f.expiresAt, f.mock = token, expiresAt, mock
}

func (f *fakeBroker) IsMock() bool { return f.mock }

func (f *fakeBroker) IssueToken(ctx context.Context) (*broker.TokenResult, error) {
	return f.issueResult, f.issueErr
}

func (f *fakeBroker) TokenStatus() (*broker.TokenStatus, error) {
	if f.panicOn == "status" {
		panic("boom")
	}
	return f.status, f.statusErr
}

func (f *fakeBroker) PlaceOrder(ctx context.Context, side broker.OrderSide, order broker.Order) (*broker.OrderResult, error) {
	f.lastSide, f.lastOrder = side, order
	return f.orderResult, f.orderErr
}

func (f *fakeBroker) ModifyOrder(ctx context.Context, order broker.ModifyOrder) (*broker.ModifyResult, error) {
	f.lastModify = order
	return f.modifyRes, f.orderErr
}

func (f *fakeBroker) TradeTypes() []broker.TradeType { return kiwoom.TradeTypes() }

func (f *fakeBroker) TradeTypeCode(name string) string { return kiwoom.TradeTypeCode(name) }

func newHandler(b broker.Broker) *Handler {
	return NewHandler(b, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSetCredentials(t *testing.T) {
	fb := &fakeBroker{}
	h := newHandler(fb)

	res := h.Call(context.Background(), SetCredentials, map[string]any{
		"appkey":    "key",
		"secretkey": "secret",
		"is_mock":   true,
	})
	if res.IsError {
		t.Fatalf("Unexpected error: %s", res.Text)
	}
	if !strings.HasPrefix(res.Text, "✅") || !strings.Contains(res.Text, "모의투자 모드") {
		t.Errorf("Unexpected text: %s", res.Text)
	}
	if fb.appKey != "key" || fb.secretKey != "secret" || !fb.mock {
		t.Errorf("Credentials not forwarded: %+v", fb)
	}

	res = h.Call(context.Background(), SetCredentials, map[string]any{"appkey": "key"})
	if !res.IsError || !strings.Contains(res.Text, "secretkey") {
		t.Errorf("Expected missing secretkey error, got %s", res.Text)
	}
}

func TestGetAccessTokenErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing credentials", &broker.ConfigError{Field: "appkey/secretkey"}, "set_credentials"},
		{"auth failure", &broker.AuthError{Op: "token request failed", Err: &broker.APIError{StatusCode: 500}}, "인증 오류"},
		{"other", errors.New("weird"), "토큰 발급 중 오류"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(&fakeBroker{issueErr: tt.err})
			res := h.Call(context.Background(), GetAccessToken, nil)
			if !res.IsError || !strings.Contains(res.Text, tt.want) {
				t.Errorf("Expected error containing %q, got %s", tt.want, res.Text)
			}
		})
	}
}

func TestGetAccessTokenRejected(t *testing.T) {
	h := newHandler(&fakeBroker{issueResult: &broker.TokenResult{
		Success: false,
		Message: "실패",
		RawBody: []byte(`{"return_code":3,"return_msg":"실패"}`),
	}})

	res := h.Call(context.Background(), GetAccessToken, map[string]any{})
	if !res.IsError || !strings.Contains(res.Text, "토큰 발급 실패") || !strings.Contains(res.Text, `"return_code": 3`) {
		t.Errorf("Unexpected text: %s", res.Text)
	}
}

func TestCheckTokenStatus(t *testing.T) {
	h := newHandler(&fakeBroker{statusErr: &broker.ConfigError{Field: "access token"}})
	res := h.Call(context.Background(), CheckTokenStatus, nil)
	if !res.IsError || !strings.Contains(res.Text, "설정된 접근 토큰이 없습니다") {
		t.Errorf("Unexpected text: %s", res.Text)
	}

	h = newHandler(&fakeBroker{status: &broker.TokenStatus{
		Token:     "abcdefghijklmnopqrstuvwxyz",
		ExpiresAt: "20300101093000",
		HasExpiry: true,
		Remaining: 90 * time.Minute,
	}})
	res = h.Call(context.Background(), CheckTokenStatus, nil)
	if res.IsError || !strings.HasPrefix(res.Text, "ℹ️") {
		t.Fatalf("Unexpected result: %s", res.Text)
	}
	for _, want := range []string{"abcdefghijklmnopqrst...", "2030-01-01 09:30:00", "실전투자", "유효 (남은 시간: 1:30:00)"} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("Expected %q in %s", want, res.Text)
		}
	}
	if strings.Contains(res.Text, "uvwxyz") {
		t.Error("Token should be truncated to 20 characters")
	}

	h = newHandler(&fakeBroker{status: &broker.TokenStatus{Token: "t", ExpiresAt: "20200101000000", HasExpiry: true, Expired: true}})
	if res := h.Call(context.Background(), CheckTokenStatus, nil); !strings.Contains(res.Text, "만료됨") {
		t.Errorf("Expected expired status, got %s", res.Text)
	}

	h = newHandler(&fakeBroker{status: &broker.TokenStatus{Token: "t"}})
	if res := h.Call(context.Background(), CheckTokenStatus, nil); !strings.Contains(res.Text, "만료시간 정보 없음") {
		t.Errorf("Expected unknown expiry status, got %s", res.Text)
	}
}

func TestStockBuyOrderDefaults(t *testing.T) {
	fb := &fakeBroker{orderResult: &broker.OrderResult{
		Success:     true,
		OrderNumber: "0000139",
		Message:     "매수주문이 완료되었습니다.",
		RawBody:     []byte(`{"ord_no":"0000139"}`),
		StatusCode:  200,
	}}
	h := newHandler(fb)

	res := h.Call(context.Background(), StockBuyOrder, map[string]any{
		"stock_code": "005930",
		"quantity":   float64(1500),
	})
	if res.IsError {
		t.Fatalf("Unexpected error: %s", res.Text)
	}

	if fb.lastSide != broker.OrderSideBuy {
		t.Errorf("Expected buy side, got %s", fb.lastSide)
	}
	want := broker.Order{StockCode: "005930", Quantity: 1500, TradeType: "시장가", Exchange: "KRX"}
	if fb.lastOrder != want {
		t.Errorf("Unexpected order: %+v", fb.lastOrder)
	}
	for _, s := range []string{"매수 주문이 성공적으로", "1,500주", "주문단가: 시장가", "시장가 (3)", "주문번호: 0000139", "```json"} {
		if !strings.Contains(res.Text, s) {
			t.Errorf("Expected %q in %s", s, res.Text)
		}
	}
}

func TestStockSellOrderArguments(t *testing.T) {
	fb := &fakeBroker{orderResult: &broker.OrderResult{Success: true, RawBody: []byte(`{}`)}}
	h := newHandler(fb)

	res := h.Call(context.Background(), StockSellOrder, map[string]any{
		"stock_code":      "000660",
		"quantity":        "3",
		"price":           float64(185000),
		"trade_type":      "보통",
		"exchange":        "SOR",
		"condition_price": "",
	})
	if res.IsError {
		t.Fatalf("Unexpected error: %s", res.Text)
	}
	if fb.lastSide != broker.OrderSideSell {
		t.Errorf("Expected sell side, got %s", fb.lastSide)
	}
	want := broker.Order{StockCode: "000660", Quantity: 3, Price: "185000", TradeType: "보통", Exchange: "SOR"}
	if fb.lastOrder != want {
		t.Errorf("Unexpected order: %+v", fb.lastOrder)
	}
	if !strings.Contains(res.Text, "매도 주문이 성공적으로") {
		t.Errorf("Unexpected text: %s", res.Text)
	}
}

func TestStockOrderBadArguments(t *testing.T) {
	h := newHandler(&fakeBroker{})

	for _, args := range []map[string]any{
		{"quantity": 1},
		{"stock_code": "005930"},
		{"stock_code": "005930", "quantity": 1.5},
		{"stock_code": "005930", "quantity": "ten"},
		{"stock_code": "005930", "quantity": 1, "price": true},
	} {
		res := h.Call(context.Background(), StockBuyOrder, args)
		if !res.IsError || !strings.Contains(res.Text, "주문 오류") {
			t.Errorf("Args %v: expected argument error, got %s", args, res.Text)
		}
	}
}

func TestStockOrderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no token", &broker.ConfigError{Field: "access token"}, "접근 토큰이 설정되지 않았습니다"},
		{"expired", &broker.AuthError{Op: "validate token", Err: broker.ErrTokenExpired}, "만료되었습니다"},
		{"order", &broker.OrderError{Op: "buy order", Err: &broker.APIError{StatusCode: 500}}, "주문 오류"},
		{"unknown", errors.New("boom"), "주문 처리 중 오류"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(&fakeBroker{orderErr: tt.err})
			res := h.Call(context.Background(), StockBuyOrder, map[string]any{"stock_code": "005930", "quantity": 1})
			if !res.IsError || !strings.Contains(res.Text, tt.want) {
				t.Errorf("Expected %q, got %s", tt.want, res.Text)
			}
		})
	}
}

func TestStockModifyOrder(t *testing.T) {
	fb := &fakeBroker{modifyRes: &broker.ModifyResult{
		Success:                 true,
		OrderNumber:             "0000140",
		BaseOriginalOrderNumber: "0000139",
		RawBody:                 []byte(`{"ord_no":"0000140"}`),
	}}
	h := newHandler(fb)

	res := h.Call(context.Background(), StockModifyOrder, map[string]any{
		"original_order_number": "12345",
		"stock_code":            "005930",
		"modify_quantity":       float64(5),
		"modify_price":          "70000",
	})
	if res.IsError {
		t.Fatalf("Unexpected error: %s", res.Text)
	}
	want := broker.ModifyOrder{Exchange: "KRX", OriginalOrderNumber: "12345", StockCode: "005930", Quantity: "5", Price: "70000"}
	if fb.lastModify != want {
		t.Errorf("Unexpected modify: %+v", fb.lastModify)
	}
	for _, s := range []string{"정정 주문이 성공적으로", "모주문번호: 0000139", "주문번호: 0000140"} {
		if !strings.Contains(res.Text, s) {
			t.Errorf("Expected %q in %s", s, res.Text)
		}
	}

	res = h.Call(context.Background(), StockModifyOrder, map[string]any{"stock_code": "005930"})
	if !res.IsError || !strings.Contains(res.Text, "original_order_number") {
		t.Errorf("Expected missing argument error, got %s", res.Text)
	}
}

func TestGetTradeTypes(t *testing.T) {
	h := newHandler(&fakeBroker{})
	res := h.Call(context.Background(), GetTradeTypes, nil)
	if res.IsError {
		t.Fatalf("Unexpected error: %s", res.Text)
	}
	if got := strings.Count(res.Text, "\n- "); got != 18 {
		t.Errorf("Expected 18 entries, got %d", got)
	}
	if !strings.Contains(res.Text, "- 시장가: 3") || !strings.Contains(res.Text, "- 중간가FOK: 31") {
		t.Errorf("Unexpected text: %s", res.Text)
	}
}

func TestUnknownToolAndPanic(t *testing.T) {
	h := newHandler(&fakeBroker{panicOn: "status"})

	res := h.Call(context.Background(), "drop_table", nil)
	if !res.IsError || !strings.Contains(res.Text, "Unknown tool: drop_table") {
		t.Errorf("Unexpected text: %s", res.Text)
	}

	res = h.Call(context.Background(), CheckTokenStatus, nil)
	if !res.IsError || !strings.Contains(res.Text, "boom") {
		t.Errorf("Panic should become an error result, got %s", res.Text)
	}
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	if len(defs) != 8 {
		t.Fatalf("Expected 8 tools, got %d", len(defs))
	}

	seen := map[string]bool{}
	h := newHandler(&fakeBroker{})
	for _, d := range defs {
		if seen[d.Name] {
			t.Errorf("Duplicate tool %s", d.Name)
		}
		seen[d.Name] = true

		// 선언된 도구는 모두 처리되어야 한다
		res := h.Call(context.Background(), d.Name, nil)
		if strings.Contains(res.Text, "Unknown tool") {
			t.Errorf("Tool %s is declared but not handled", d.Name)
		}
	}

	for _, d := range defs {
		if d.Name != StockBuyOrder {
			continue
		}
		for _, p := range d.Params {
			if p.Name == "trade_type" && len(p.Enum) != 18 {
				t.Errorf("Expected 18 trade type enum values, got %d", len(p.Enum))
			}
			if p.Name == "exchange" && fmt.Sprint(p.Enum) != "[KRX KOSDAQ SOR]" {
				t.Errorf("Unexpected exchange enum %v", p.Enum)
			}
		}
	}
}

func TestEndToEndWithKiwoomClient(t *testing.T) {
	var orderBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case kiwoom.PathToken:
			expires := time.Now().Add(24 * time.Hour).In(time.FixedZone("KST", 9*60*60)).Format(kiwoom.ExpiryLayout)
			_, _ = io.WriteString(w, `{"token":"issued-token-0123456789abcdef","token_type":"bearer","expires_dt":"`+expires+`","return_code":0}`)
		case kiwoom.PathStockOrder:
			data, _ := io.ReadAll(r.Body)
			orderBody = string(data)
			_, _ = io.WriteString(w, `{"ord_no":"0000777","return_code":0,"return_msg":"완료"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	b := kiwoom.New(kiwoom.NewSession(kiwoom.SessionState{}),
		kiwoom.WithHosts("http://127.0.0.1:1", srv.URL),
		kiwoom.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	h := newHandler(b)
	ctx := context.Background()

	if res := h.Call(ctx, StockBuyOrder, map[string]any{"stock_code": "005930", "quantity": 10}); !res.IsError {
		t.Fatalf("Order without token should fail, got %s", res.Text)
	}

	steps := []struct {
		tool string
		args map[string]any
	}{
		{SetCredentials, map[string]any{"appkey": "k", "secretkey": "s", "is_mock": true}},
		{GetAccessToken, nil},
		{CheckTokenStatus, nil},
		{StockBuyOrder, map[string]any{"stock_code": "005930", "quantity": 10, "trade_type": "시장가", "exchange": "KRX"}},
	}
	for _, step := range steps {
		res := h.Call(ctx, step.tool, step.args)
		if res.IsError {
			t.Fatalf("%s failed: %s", step.tool, res.Text)
		}
		if step.tool == CheckTokenStatus && !strings.Contains(res.Text, "유효") {
			t.Errorf("Expected valid token, got %s", res.Text)
		}
	}

	want := `{"dmst_stex_tp":"KRX","stk_cd":"005930","ord_qty":"10","ord_uv":"","trde_tp":"3","cond_uv":""}`
	if orderBody != want {
		t.Errorf("Unexpected order body:\n got %s\nwant %s", orderBody, want)
	}
}
