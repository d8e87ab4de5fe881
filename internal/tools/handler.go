package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"kiwoom-mcp/internal/broker"
)

// Result 도구 실행 결과
type Result struct {
	Text    string
	IsError bool
}

func success(msg string) Result { return Result{Text: "✅ " + msg} }
func failure(msg string) Result { return Result{Text: "❌ " + msg, IsError: true} }
func info(msg string) Result    { return Result{Text: "ℹ️ " + msg} }

// Handler 도구 호출 처리
type Handler struct {
	broker broker.Broker
	logger *slog.Logger
}

// NewHandler 핸들러 생성
func NewHandler(b broker.Broker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		broker: b,
		logger: logger,
	}
}

// Call 이름으로 도구 실행. 어떤 실패도 프로세스를 멈추지 않고 에러 결과로 돌려준다.
func (h *Handler) Call(ctx context.Context, name string, args map[string]any) (res Result) {
	logger := h.logger.With("request_id", uuid.NewString(), "tool", name)
	logger.Info("tool called")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool panicked", "panic", r)
			res = failure(fmt.Sprintf("도구 실행 중 오류가 발생했습니다: %v", r))
		}
		if res.IsError {
			logger.Warn("tool failed", "result", firstLine(res.Text))
		}
	}()

	a := Args(args)
	switch name {
	case SetCredentials:
		return h.setCredentials(a)
	case GetAccessToken:
		return h.getAccessToken(ctx)
	case SetAccessToken:
		return h.setAccessToken(a)
	case CheckTokenStatus:
		return h.checkTokenStatus()
	case StockBuyOrder:
		return h.stockOrder(ctx, a, broker.OrderSideBuy)
	case StockSellOrder:
		return h.stockOrder(ctx, a, broker.OrderSideSell)
	case StockModifyOrder:
		return h.modifyOrder(ctx, a)
	case GetTradeTypes:
		return h.getTradeTypes()
	default:
		return failure(fmt.Sprintf("도구 실행 중 오류가 발생했습니다: Unknown tool: %s", name))
	}
}

func (h *Handler) setCredentials(a Args) Result {
	appKey, err := a.RequiredString("appkey")
	if err != nil {
		return failure("인증 정보 설정 실패: " + err.Error())
	}
	secretKey, err := a.RequiredString("secretkey")
	if err != nil {
		return failure("인증 정보 설정 실패: " + err.Error())
	}
	mock, err := a.Bool("is_mock", false)
	if err != nil {
		return failure("인증 정보 설정 실패: " + err.Error())
	}

	h.broker.SetCredentials(appKey, secretKey, mock)

	var b strings.Builder
	fmt.Fprintf(&b, "키움증권 API 인증 정보가 설정되었습니다. (%s 모드)\n", modeName(mock))
	b.WriteString("이제 get_access_token을 사용하여 접근 토큰을 발급받으세요.")
	return success(b.String())
}

func (h *Handler) getAccessToken(ctx context.Context) Result {
	result, err := h.broker.IssueToken(ctx)
	if err != nil {
		var cfgErr *broker.ConfigError
		var authErr *broker.AuthError
		switch {
		case errors.As(err, &cfgErr):
			return failure("앱키와 시크릿키가 설정되지 않았습니다. 먼저 set_credentials를 사용하세요.")
		case errors.As(err, &authErr):
			return failure("인증 오류: " + err.Error())
		default:
			return failure("토큰 발급 중 오류가 발생했습니다: " + err.Error())
		}
	}

	if !result.Success {
		var b strings.Builder
		b.WriteString("토큰 발급 실패\n\n")
		fmt.Fprintf(&b, "응답: %s", prettyJSON(result.RawBody))
		return failure(b.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "접근 토큰이 성공적으로 발급되었습니다! (%s 모드)\n\n", modeName(h.broker.IsMock()))
	b.WriteString("🔑 토큰 정보:\n")
	fmt.Fprintf(&b, "- 토큰 타입: %s\n", orNA(result.TokenType))
	fmt.Fprintf(&b, "- 만료일시: %s\n", displayExpiry(result.ExpiresAt))
	fmt.Fprintf(&b, "- 토큰: %s...\n\n", tokenPreview(result.Token))
	b.WriteString("💡 이제 주식 주문을 실행할 수 있습니다!")
	return success(b.String())
}

func (h *Handler) setAccessToken(a Args) Result {
	token, err := a.RequiredString("token")
	if err != nil {
		return failure("토큰 설정 실패: " + err.Error())
	}
	expiresAt, err := a.String("expires_dt", "")
	if err != nil {
		return failure("토큰 설정 실패: " + err.Error())
	}
	mock, err := a.Bool("is_mock", false)
	if err != nil {
		return failure("토큰 설정 실패: " + err.Error())
	}

	h.broker.SetToken(token, expiresAt, mock)

	var b strings.Builder
	fmt.Fprintf(&b, "키움증권 API 접근 토큰이 설정되었습니다. (%s 모드)\n", modeName(mock))
	if status, err := h.broker.TokenStatus(); err == nil && status.HasExpiry {
		fmt.Fprintf(&b, "만료일시: %s", displayExpiry(status.ExpiresAt))
	}
	return success(b.String())
}

func (h *Handler) checkTokenStatus() Result {
	status, err := h.broker.TokenStatus()
	if err != nil {
		return failure("설정된 접근 토큰이 없습니다.")
	}

	var b strings.Builder
	b.WriteString("현재 토큰 상태:\n\n")
	fmt.Fprintf(&b, "- 토큰: %s...\n", tokenPreview(status.Token))
	fmt.Fprintf(&b, "- 만료일시: %s\n", displayExpiry(status.ExpiresAt))
	fmt.Fprintf(&b, "- 모드: %s\n", modeName(status.Mock))
	switch {
	case !status.HasExpiry:
		b.WriteString("- 상태: ⚠️ 만료시간 정보 없음\n")
	case status.Expired:
		b.WriteString("- 상태: ❌ 만료됨\n")
	default:
		fmt.Fprintf(&b, "- 상태: ✅ 유효 (남은 시간: %s)\n", formatRemaining(status.Remaining))
	}
	return info(b.String())
}

func (h *Handler) stockOrder(ctx context.Context, a Args, side broker.OrderSide) Result {
	order, err := orderFromArgs(a)
	if err != nil {
		return failure("주문 오류: " + err.Error())
	}

	result, err := h.broker.PlaceOrder(ctx, side, order)
	if err != nil {
		return orderFailure(err)
	}

	if !result.Success {
		var b strings.Builder
		fmt.Fprintf(&b, "%s 주문 실패\n\n", side.Korean())
		if len(result.RawBody) > 0 {
			fmt.Fprintf(&b, "응답: %s", prettyJSON(result.RawBody))
		} else {
			fmt.Fprintf(&b, "오류: %s", orDefault(result.Message, "Unknown error"))
		}
		return failure(b.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s 주문이 성공적으로 처리되었습니다.\n\n", side.Korean())
	b.WriteString("📋 주문 정보:\n")
	fmt.Fprintf(&b, "- 종목코드: %s\n", order.StockCode)
	fmt.Fprintf(&b, "- 주문수량: %s주\n", commaInt(order.Quantity))
	fmt.Fprintf(&b, "- 주문단가: %s\n", orDefault(order.Price, "시장가"))
	fmt.Fprintf(&b, "- 매매구분: %s (%s)\n", order.TradeType, h.broker.TradeTypeCode(order.TradeType))
	fmt.Fprintf(&b, "- 거래소: %s\n\n", order.Exchange)
	writeOrderOutcome(&b, result.OrderNumber, result.Message, result.RawBody)
	return success(b.String())
}

func (h *Handler) modifyOrder(ctx context.Context, a Args) Result {
	order, err := modifyFromArgs(a)
	if err != nil {
		return failure("정정 주문 오류: " + err.Error())
	}

	result, err := h.broker.ModifyOrder(ctx, order)
	if err != nil {
		return orderFailure(err)
	}

	if !result.Success {
		return failure(fmt.Sprintf("정정 주문 실패\n\n응답: %s", prettyJSON(result.RawBody)))
	}

	var b strings.Builder
	b.WriteString("정정 주문이 성공적으로 처리되었습니다.\n\n")
	b.WriteString("📋 정정 정보:\n")
	fmt.Fprintf(&b, "- 원주문번호: %s\n", order.OriginalOrderNumber)
	fmt.Fprintf(&b, "- 종목코드: %s\n", order.StockCode)
	fmt.Fprintf(&b, "- 정정수량: %s주\n", order.Quantity)
	fmt.Fprintf(&b, "- 정정단가: %s\n", order.Price)
	fmt.Fprintf(&b, "- 거래소: %s\n\n", order.Exchange)
	if result.BaseOriginalOrderNumber != "" {
		fmt.Fprintf(&b, "🔗 모주문번호: %s\n", result.BaseOriginalOrderNumber)
	}
	writeOrderOutcome(&b, result.OrderNumber, result.Message, result.RawBody)
	return success(b.String())
}

func (h *Handler) getTradeTypes() Result {
	var b strings.Builder
	b.WriteString("사용 가능한 매매구분:\n\n")
	for _, tt := range h.broker.TradeTypes() {
		fmt.Fprintf(&b, "- %s: %s\n", tt.Name, tt.Code)
	}
	return info(b.String())
}

func orderFromArgs(a Args) (broker.Order, error) {
	var order broker.Order
	var err error

	if order.StockCode, err = a.RequiredString("stock_code"); err != nil {
		return order, err
	}
	if order.Quantity, err = a.RequiredInt("quantity"); err != nil {
		return order, err
	}
	if order.Price, err = a.String("price", ""); err != nil {
		return order, err
	}
	if order.TradeType, err = a.String("trade_type", "시장가"); err != nil {
		return order, err
	}
	if order.Exchange, err = a.String("exchange", "KRX"); err != nil {
		return order, err
	}
	if order.ConditionPrice, err = a.String("condition_price", ""); err != nil {
		return order, err
	}
	return order, nil
}

func modifyFromArgs(a Args) (broker.ModifyOrder, error) {
	var order broker.ModifyOrder
	var err error

	if order.Exchange, err = a.String("exchange", "KRX"); err != nil {
		return order, err
	}
	if order.OriginalOrderNumber, err = a.RequiredString("original_order_number"); err != nil {
		return order, err
	}
	if order.StockCode, err = a.RequiredString("stock_code"); err != nil {
		return order, err
	}
	if order.Quantity, err = a.RequiredString("modify_quantity"); err != nil {
		return order, err
	}
	if order.Price, err = a.RequiredString("modify_price"); err != nil {
		return order, err
	}
	if order.ConditionPrice, err = a.String("modify_condition_price", ""); err != nil {
		return order, err
	}
	return order, nil
}

// orderFailure 주문 에러를 종류별 메시지로 변환
func orderFailure(err error) Result {
	var cfgErr *broker.ConfigError
	var authErr *broker.AuthError
	var orderErr *broker.OrderError
	switch {
	case errors.As(err, &cfgErr):
		return failure("접근 토큰이 설정되지 않았습니다. 먼저 get_access_token 또는 set_access_token을 사용하세요.")
	case errors.Is(err, broker.ErrTokenExpired):
		return failure("인증 오류: 접근 토큰이 만료되었습니다. get_access_token으로 토큰을 다시 발급하세요.")
	case errors.As(err, &authErr):
		return failure("인증 오류: " + err.Error())
	case errors.As(err, &orderErr):
		return failure("주문 오류: " + err.Error())
	default:
		return failure("주문 처리 중 오류가 발생했습니다: " + err.Error())
	}
}

func writeOrderOutcome(b *strings.Builder, orderNumber, message string, raw []byte) {
	if orderNumber != "" {
		fmt.Fprintf(b, "🔢 주문번호: %s\n", orderNumber)
	}
	if message != "" {
		fmt.Fprintf(b, "💬 응답메시지: %s\n", message)
	}
	if len(raw) > 0 {
		fmt.Fprintf(b, "\n📊 전체 응답:\n```json\n%s\n```", prettyJSON(raw))
	}
}
