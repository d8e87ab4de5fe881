package kiwoom

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kiwoom-mcp/internal/broker"
)

// orderKind 주문 종류
type orderKind int

const (
	kindBuy orderKind = iota
	kindSell
	kindModify
)

func (k orderKind) op() Operation {
	switch k {
	case kindSell:
		return OpSell
	case kindModify:
		return OpModify
	default:
		return OpBuy
	}
}

func (k orderKind) String() string {
	switch k {
	case kindSell:
		return "sell order"
	case kindModify:
		return "modify order"
	default:
		return "buy order"
	}
}

// Orders 매수/매도/정정 주문
type Orders struct {
	session *Session
	client  *Client
}

// NewOrders 주문 처리기 생성
func NewOrders(session *Session, client *Client) *Orders {
	return &Orders{
		session: session,
		client:  client,
	}
}

// Place 매수 또는 매도 주문
func (o *Orders) Place(ctx context.Context, side broker.OrderSide, order broker.Order) (*broker.OrderResult, error) {
	kind := kindBuy
	if side == broker.OrderSideSell {
		kind = kindSell
	}

	if err := validateOrder(order); err != nil {
		return nil, &broker.OrderError{Op: kind.String(), Err: err}
	}

	payload := BuildOrderPayload(order, ExchangeCode(order.Exchange), TradeTypeCode(order.TradeType))
	raw, err := o.execute(ctx, kind, func(ctx context.Context, host, token string) (*RawResponse, error) {
		return o.client.SubmitOrder(ctx, host, payload, token, APIID(kind.op()))
	})
	if err != nil {
		return nil, err
	}
	return InterpretOrderResponse(raw), nil
}

// Modify 정정 주문
func (o *Orders) Modify(ctx context.Context, order broker.ModifyOrder) (*broker.ModifyResult, error) {
	if err := validateModify(order); err != nil {
		return nil, &broker.OrderError{Op: kindModify.String(), Err: err}
	}

	payload := BuildModifyPayload(order, ExchangeCode(order.Exchange))
	raw, err := o.execute(ctx, kindModify, func(ctx context.Context, host, token string) (*RawResponse, error) {
		return o.client.ModifyOrder(ctx, host, payload, token)
	})
	if err != nil {
		return nil, err
	}
	return InterpretModifyResponse(raw), nil
}

// execute 주문 공통 처리: 토큰 확인, 전송, 에러 분류.
// 토큰과 호스트는 한 스냅샷에서 함께 정한다.
func (o *Orders) execute(ctx context.Context, kind orderKind, send func(ctx context.Context, host, token string) (*RawResponse, error)) (*RawResponse, error) {
	state := o.session.Snapshot()
	token, err := usable(state, time.Now())
	if err != nil {
		return nil, err
	}

	raw, err := send(ctx, o.client.HostFor(state), token)
	if err != nil {
		o.client.logger.Error("order request failed", "kind", kind.String(), "api_id", APIID(kind.op()), "error", err)
		return nil, &broker.OrderError{Op: kind.String(), Err: err}
	}

	o.client.logger.Info("order accepted", "kind", kind.String(), "api_id", APIID(kind.op()), "status", raw.StatusCode)
	return raw, nil
}

// BuildOrderPayload 주문 요청 본문 생성. 빈 단가는 빈 문자열로 보낸다.
func BuildOrderPayload(order broker.Order, exchangeCode, tradeTypeCode string) OrderPayload {
	return OrderPayload{
		DmstStexTp: exchangeCode,
		StkCd:      order.StockCode,
		OrdQty:     strconv.Itoa(order.Quantity),
		OrdUv:      order.Price,
		TrdeTp:     tradeTypeCode,
		CondUv:     order.ConditionPrice,
	}
}

// BuildModifyPayload 정정 요청 본문 생성
func BuildModifyPayload(order broker.ModifyOrder, exchangeCode string) ModifyPayload {
	return ModifyPayload{
		DmstStexTp: exchangeCode,
		OrigOrdNo:  order.OriginalOrderNumber,
		StkCd:      order.StockCode,
		MdfyQty:    order.Quantity,
		MdfyUv:     order.Price,
		MdfyCondUv: order.ConditionPrice,
	}
}

// InterpretOrderResponse 주문 응답 해석.
// HTTP 교환이 에러 없이 끝났으면 성공으로 본다. 본문의 return_code는 확인하지 않는다.
func InterpretOrderResponse(raw *RawResponse) *broker.OrderResult {
	return &broker.OrderResult{
		Success:     true,
		OrderNumber: raw.str(fieldOrdNo),
		Message:     raw.str(fieldReturnMsg),
		RawBody:     raw.Body,
		StatusCode:  raw.StatusCode,
	}
}

// InterpretModifyResponse 정정 응답 해석. 주문 응답과 같은 기준을 쓴다.
func InterpretModifyResponse(raw *RawResponse) *broker.ModifyResult {
	return &broker.ModifyResult{
		Success:                 true,
		OrderNumber:             raw.str(fieldOrdNo),
		BaseOriginalOrderNumber: raw.str(fieldBaseOrigOrdNo),
		ModifyQuantity:          raw.str(fieldMdfyQty),
		ExchangeType:            raw.str(fieldDmstStexTp),
		Message:                 raw.str(fieldReturnMsg),
		RawBody:                 raw.Body,
		StatusCode:              raw.StatusCode,
	}
}

func validateOrder(order broker.Order) error {
	if strings.TrimSpace(order.StockCode) == "" {
		return fmt.Errorf("%w: stock code is required", broker.ErrInvalidOrder)
	}
	if order.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", broker.ErrInvalidOrder, order.Quantity)
	}
	if err := validatePrice("price", order.Price, false); err != nil {
		return err
	}
	return validatePrice("condition price", order.ConditionPrice, false)
}

func validateModify(order broker.ModifyOrder) error {
	if strings.TrimSpace(order.OriginalOrderNumber) == "" {
		return fmt.Errorf("%w: original order number is required", broker.ErrInvalidOrder)
	}
	if strings.TrimSpace(order.StockCode) == "" {
		return fmt.Errorf("%w: stock code is required", broker.ErrInvalidOrder)
	}
	qty, err := strconv.Atoi(order.Quantity)
	if err != nil || qty <= 0 {
		return fmt.Errorf("%w: modify quantity must be a positive integer, got %q", broker.ErrInvalidOrder, order.Quantity)
	}
	if err := validatePrice("modify price", order.Price, true); err != nil {
		return err
	}
	return validatePrice("modify condition price", order.ConditionPrice, false)
}

// validatePrice 단가는 비어 있거나 0 이상의 숫자 문자열
func validatePrice(field, value string, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%w: %s is required", broker.ErrInvalidOrder, field)
		}
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("%w: %s %q is not a number", broker.ErrInvalidOrder, field, value)
	}
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", broker.ErrInvalidOrder, field)
	}
	return nil
}
