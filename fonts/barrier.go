package fonts

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotReady 表示字体就绪屏障失败或等待被取消。
// 在字体加载完成前测量或绘制会静默回退到替代字体，导致与实时视图的宽度不一致。
var ErrNotReady = errors.New("fonts: 字体未就绪")

// Barrier 是一次性的“字体就绪”信号。Resolve 只有第一次调用生效。
type Barrier struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewBarrier 返回一个尚未就绪的屏障。
func NewBarrier() *Barrier {
	return &Barrier{done: make(chan struct{})}
}

// ReadyBarrier 返回已经就绪的屏障。
func ReadyBarrier() *Barrier {
	b := NewBarrier()
	b.Resolve(nil)
	return b
}

// Resolve 标记屏障完成；err 非空表示字体加载失败。
func (b *Barrier) Resolve(err error) {
	b.once.Do(func() {
		b.err = err
		close(b.done)
	})
}

// Done 在屏障完成后关闭。
func (b *Barrier) Done() <-chan struct{} { return b.done }

// Ready 报告屏障是否已成功完成，不阻塞。
func (b *Barrier) Ready() bool {
	select {
	case <-b.done:
		return b.err == nil
	default:
		return false
	}
}

// Wait 阻塞直到屏障完成或 ctx 结束。失败以 ErrNotReady 包装返回，不做重试。
func (b *Barrier) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		if b.err != nil {
			return fmt.Errorf("%w: %w", ErrNotReady, b.err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
	}
}

// Preload 在后台执行 load，并在其返回时完成屏障。
func Preload(ctx context.Context, load func(context.Context) error) *Barrier {
	b := NewBarrier()
	go func() {
		b.Resolve(load(ctx))
	}()
	return b
}

// All 返回一个在全部屏障成功后就绪的屏障；任一失败即以该错误完成。
// ctx 结束时以 ctx 的错误完成，后台等待随之退出，调用方应在等待结束后取消 ctx。
func All(ctx context.Context, barriers ...*Barrier) *Barrier {
	return Preload(ctx, func(ctx context.Context) error {
		for _, b := range barriers {
			if b == nil {
				continue
			}
			select {
			case <-b.done:
				if b.err != nil {
					return b.err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
}
