package fonts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"go-regular", "builtin:go-bold", "embed:go-mono.ttf", "built-in:GO-ITALIC"} {
		data, err := Load(name)
		if err != nil || len(data) == 0 {
			t.Fatalf("Load(%q) failed: %v", name, err)
		}
	}
	if _, err := Load("builtin:comic-sans"); err == nil {
		t.Fatalf("expected error for unknown builtin font")
	}
}

func TestVariant(t *testing.T) {
	cases := []struct {
		name   string
		weight int
		want   string
	}{
		{"builtin:go-regular", 0, "go-regular"},
		{"go-regular", 500, "go-medium"},
		{"go-regular", 700, "go-bold"},
		{"go-italic", 800, "go-bold-italic"},
		{"go-mono", 600, "go-mono-bold"},
		{"go-bold", 300, "go-bold"},
	}
	for _, c := range cases {
		if got := Variant(c.name, c.weight); got != c.want {
			t.Fatalf("Variant(%q,%d) = %q, want %q", c.name, c.weight, got, c.want)
		}
	}
}

func TestSourceBytes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.ttf"), []byte("font-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := Source{BaseDir: dir, Blobs: map[string][]byte{"brand": []byte("brand-bytes")}}

	if data, err := src.Bytes("custom.ttf", 0); err != nil || string(data) != "font-bytes" {
		t.Fatalf("relative path: %q, %v", data, err)
	}
	if data, err := src.Bytes("builtin:brand", 700); err != nil || string(data) != "brand-bytes" {
		t.Fatalf("injected blob: %q, %v", data, err)
	}
	if data, err := src.Bytes("builtin:go-regular", 700); err != nil || len(data) == 0 {
		t.Fatalf("builtin variant: %v", err)
	}
	if _, err := (Source{}).Bytes("custom.ttf", 0); err == nil {
		t.Fatalf("relative path without BaseDir should fail")
	}
	if _, err := src.Bytes("", 0); err == nil {
		t.Fatalf("empty src should fail")
	}
}

func TestBarrierWait(t *testing.T) {
	b := NewBarrier()
	if b.Ready() {
		t.Fatalf("new barrier should not be ready")
	}
	go b.Resolve(nil)
	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !b.Ready() {
		t.Fatalf("barrier should be ready after resolve")
	}
	// 只有第一次 Resolve 生效
	b.Resolve(errors.New("late"))
	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("second resolve should be ignored: %v", err)
	}
}

func TestBarrierFailure(t *testing.T) {
	cause := errors.New("decode failed")
	b := Preload(context.Background(), func(context.Context) error { return cause })
	err := b.Wait(context.Background())
	if !errors.Is(err, ErrNotReady) || !errors.Is(err, cause) {
		t.Fatalf("Wait should wrap ErrNotReady and the cause, got %v", err)
	}
	if b.Ready() {
		t.Fatalf("failed barrier must not report ready")
	}
}

func TestBarrierContextCancel(t *testing.T) {
	b := NewBarrier()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := b.Wait(ctx)
	if !errors.Is(err, ErrNotReady) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait should fail with ErrNotReady on timeout, got %v", err)
	}
}

func TestAll(t *testing.T) {
	ok := ReadyBarrier()
	pending := NewBarrier()
	all := All(context.Background(), ok, nil, pending)
	if all.Ready() {
		t.Fatalf("All should wait for every barrier")
	}
	pending.Resolve(nil)
	if err := all.Wait(context.Background()); err != nil {
		t.Fatalf("All: %v", err)
	}

	failing := NewBarrier()
	failing.Resolve(errors.New("boom"))
	if err := All(context.Background(), ok, failing).Wait(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("All should fail when one barrier fails, got %v", err)
	}
}

func TestAllStopsWaitingWhenContextEnds(t *testing.T) {
	never := NewBarrier()
	before := runtime.NumGoroutine()
	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		err := All(ctx, never, ReadyBarrier()).Wait(ctx)
		cancel()
		if !errors.Is(err, ErrNotReady) {
			t.Fatalf("Wait on an unresolved barrier should fail, got %v", err)
		}
	}
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before+5 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := runtime.NumGoroutine(); n > before+5 {
		t.Fatalf("waiters still running after cancel: before=%d now=%d", before, n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	all := All(ctx, never)
	cancel()
	select {
	case <-all.Done():
	case <-time.After(time.Second):
		t.Fatalf("All should complete once its context is cancelled")
	}
	if all.Ready() {
		t.Fatalf("a cancelled All must not report ready")
	}
}
