package layout

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志记录；Enabled 返回 false，调用方不会格式化消息。
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger 配置 layout 及渲染后端共用的日志器。默认不输出任何日志；传入 nil 恢复静默。
//
// 使用的级别：
//   - [slog.LevelDebug]：区间被裁剪、几何不一致、字体回退等诊断信息
//   - [slog.LevelWarn]：字体就绪屏障失败
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger 返回当前日志器，可并发调用。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
