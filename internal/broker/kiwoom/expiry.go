package kiwoom

import (
	"time"
)

// ExpiryLayout 만료일시 형식 (YYYYMMDDHHMMSS)
const ExpiryLayout = "20060102150405"

// DisplayLayout 화면 표시용 일시 형식
const DisplayLayout = "2006-01-02 15:04:05"

// 키움 서버가 내려주는 만료일시는 한국 시간 기준
var kst = time.FixedZone("KST", 9*60*60)

// ParseExpiry 14자리 만료일시 파싱
func ParseExpiry(expiresAt string) (time.Time, bool) {
	if len(expiresAt) != len(ExpiryLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(ExpiryLayout, expiresAt, kst)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsExpired 토큰 만료 여부. 파싱할 수 없으면 만료로 간주한다.
func IsExpired(expiresAt string) bool {
	return IsExpiredAt(expiresAt, time.Now())
}

// IsExpiredAt now 기준 만료 여부 (now == 만료시각이면 만료)
func IsExpiredAt(expiresAt string, now time.Time) bool {
	expiry, ok := ParseExpiry(expiresAt)
	if !ok {
		return true
	}
	return !now.Before(expiry)
}

// Remaining 만료까지 남은 시간 (초 단위 절삭). 만료됐거나 파싱 불가면 false.
func Remaining(expiresAt string) (time.Duration, bool) {
	return RemainingAt(expiresAt, time.Now())
}

// RemainingAt now 기준 남은 시간
func RemainingAt(expiresAt string, now time.Time) (time.Duration, bool) {
	if IsExpiredAt(expiresAt, now) {
		return 0, false
	}
	expiry, _ := ParseExpiry(expiresAt)
	return expiry.Sub(now).Truncate(time.Second), true
}

// FormatExpiry 만료일시를 표시용 형식으로 변환. 파싱 불가면 원문 그대로 반환.
func FormatExpiry(expiresAt string) string {
	expiry, ok := ParseExpiry(expiresAt)
	if !ok {
		return expiresAt
	}
	return expiry.Format(DisplayLayout)
}

// formatExpiryTime time.Time → 14자리 만료일시
func formatExpiryTime(t time.Time) string {
	return t.In(kst).Format(ExpiryLayout)
}
