package logger

import (
	"testing"

	"github.com/xmustafa5/TimeClass-sub001/config"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format=%s 初始化失败: %v", format, err)
		}
		if l == nil {
			t.Fatalf("format=%s 返回 nil", format)
		}
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "verbose"}); err == nil {
		t.Error("非法日志级别应报错")
	}
}
