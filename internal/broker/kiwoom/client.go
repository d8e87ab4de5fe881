package kiwoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"kiwoom-mcp/internal/broker"
	"kiwoom-mcp/internal/ratelimit"
)

// 레이트리미터 그룹
const (
	limitToken = "token"
	limitOrder = "order"
)

// RawResponse 브로커 응답 원문
type RawResponse struct {
	StatusCode int
	Body       []byte
	Fields     map[string]any
}

func (r *RawResponse) str(key string) string {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%.0f", val)
	default:
		return fmt.Sprint(val)
	}
}

// returnCode return_code 필드. 없거나 정수 전체가 아니면 false.
func (r *RawResponse) returnCode() (int, bool) {
	switch v := r.Fields[fieldReturnCode].(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case string:
		code, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return code, true
	}
	return 0, false
}

// ClientOption 클라이언트 옵션
type ClientOption func(*Client)

// WithHosts 실전/모의 호스트 지정
func WithHosts(realHost, mockHost string) ClientOption {
	return func(c *Client) {
		c.realHost = realHost
		c.mockHost = mockHost
	}
}

// WithTimeout HTTP 요청 타임아웃. 0이면 무제한.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient HTTP 클라이언트 교체
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit 초당 요청 수 제한. 0이면 제한 없음.
func WithRateLimit(perSecond int) ClientOption {
	return func(c *Client) {
		c.limiters = ratelimit.NewMultiLimiter()
		c.limiters.Add(limitToken, perSecond)
		c.limiters.Add(limitOrder, perSecond)
	}
}

// WithLogger 로거 지정
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client 키움 REST API 클라이언트.
// 세션을 직접 읽지 않고 호출자가 넘긴 호스트로 보낸다.
type Client struct {
	httpClient *http.Client
	limiters   *ratelimit.MultiLimiter
	realHost   string
	mockHost   string
	logger     *slog.Logger
}

// NewClient 키움 클라이언트 생성
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiters:   ratelimit.NewMultiLimiter(),
		realHost:   RealHost,
		mockHost:   MockHost,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HostFor 스냅샷의 모드에 해당하는 호스트.
// 한 번의 호출에서 토큰과 호스트는 같은 스냅샷에서 나와야 한다.
func (c *Client) HostFor(state SessionState) string {
	return state.Host(c.realHost, c.mockHost)
}

// IssueToken 접근토큰 발급 요청 (au10001)
func (c *Client) IssueToken(ctx context.Context, host string, req TokenRequest) (*RawResponse, error) {
	headers := map[string]string{
		"api-id": APIID(OpToken),
	}
	return c.doRequest(ctx, host, limitToken, PathToken, headers, req)
}

// SubmitOrder 매수/매도 주문 전송
func (c *Client) SubmitOrder(ctx context.Context, host string, payload OrderPayload, token, apiID string) (*RawResponse, error) {
	return c.doRequest(ctx, host, limitOrder, PathStockOrder, orderHeaders(token, apiID), payload)
}

// ModifyOrder 정정 주문 전송. 주문과 같은 경로를 쓰고 api-id로 구분한다.
func (c *Client) ModifyOrder(ctx context.Context, host string, payload ModifyPayload, token string) (*RawResponse, error) {
	return c.doRequest(ctx, host, limitOrder, PathStockOrder, orderHeaders(token, APIID(OpModify)), payload)
}

func orderHeaders(token, apiID string) map[string]string {
	return map[string]string{
		"authorization": "Bearer " + token,
		"cont-yn":       "N",
		"next-key":      "",
		"api-id":        apiID,
	}
}

// doRequest 공통 POST 요청. 재시도는 하지 않는다.
// host는 호출자가 잡은 스냅샷에서 정해지며 대기 중 모드가 바뀌어도 유지된다.
func (c *Client) doRequest(ctx context.Context, host, group, path string, headers map[string]string, body any) (*RawResponse, error) {
	if l := c.limiters.Get(group); l != nil && !l.Unlimited() {
		c.logger.Debug("waiting for rate limiter", "group", l.Name())
	}
	if err := c.limiters.Wait(ctx, group); err != nil {
		return nil, &broker.APIError{Err: fmt.Errorf("rate limit: %w", err)}
	}

	url := host + path

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, &broker.APIError{Err: fmt.Errorf("marshal body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &broker.APIError{Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("kiwoom request", "method", http.MethodPost, "url", url, "api_id", headers["api-id"])

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("kiwoom request failed", "url", url, "error", err)
		return nil, &broker.APIError{Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &broker.APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("kiwoom API error", "status", resp.StatusCode, "api_id", headers["api-id"])
		return nil, &broker.APIError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	fields := map[string]any{}
	if err := json.Unmarshal(respBody, &fields); err != nil {
		return nil, &broker.APIError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        fmt.Errorf("unmarshal response: %w", err),
		}
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Fields:     fields,
	}, nil
}
