package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	orderNumberHead   = "ORD-"
	orderNumberDigits = 5
)

// ORD-YYYYMMDD- （UTCの日付）
func OrderNumberPrefix(day time.Time) string {
	return orderNumberHead + day.UTC().Format("20060102") + "-"
}

// 同じprefixの既存番号の最大値+1を返す。
// 数値として比較し、数字として読めない末尾は無視する。
func NextOrderNumber(prefix string, existing []string) string {
	max := 0
	for _, n := range existing {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		suffix := n[len(prefix):]
		seq, err := strconv.Atoi(suffix)
		if err != nil || seq < 0 {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, orderNumberDigits, max+1)
}
