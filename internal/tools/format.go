package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"kiwoom-mcp/internal/broker/kiwoom"
)

func modeName(mock bool) string {
	if mock {
		return "모의투자"
	}
	return "실전투자"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orNA(s string) string {
	return orDefault(s, "N/A")
}

// displayExpiry 만료일시 표시. 비어 있으면 N/A.
func displayExpiry(expiresAt string) string {
	if expiresAt == "" {
		return "N/A"
	}
	return kiwoom.FormatExpiry(expiresAt)
}

// tokenPreview 토큰 앞 20자
func tokenPreview(token string) string {
	if token == "" {
		return "N/A"
	}
	r := []rune(token)
	if len(r) > 20 {
		r = r[:20]
	}
	return string(r)
}

// formatRemaining 남은 시간을 H:MM:SS로. 하루 이상이면 "N day(s), " 접두.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	hms := fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	switch {
	case days == 1:
		return "1 day, " + hms
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, hms)
	}
	return hms
}

func commaInt(n int) string {
	return humanize.Comma(int64(n))
}

// prettyJSON 응답 원문을 들여쓰기. JSON이 아니면 그대로.
func prettyJSON(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
