package layout

import (
	"errors"
	"fmt"
)

// EditPhase 是单个文本块颜色编辑的状态。
type EditPhase int

const (
	EditIdle EditPhase = iota
	EditEditing
	EditConfirmed
	EditCancelled
)

func (p EditPhase) String() string {
	switch p {
	case EditIdle:
		return "idle"
	case EditEditing:
		return "editing"
	case EditConfirmed:
		return "confirmed"
	case EditCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("EditPhase(%d)", int(p))
	}
}

var (
	// ErrEditInProgress 表示已有未结束的编辑。
	ErrEditInProgress = errors.New("layout: 编辑进行中")
	// ErrNoActiveEdit 表示当前没有可更新、确认或取消的编辑。
	ErrNoActiveEdit = errors.New("layout: 没有进行中的编辑")
)

// EditSession 把草稿/已提交区间建模为显式的两阶段状态机：
// Idle -> Editing(draft) -> Confirmed（并入已提交）| Cancelled（恢复快照）。
// 折叠与恢复都在一次调用内完成，读者不会观察到半折叠的区间集合。
// EditSession 不是并发安全的，由创建文本块的编辑面独占。
type EditSession struct {
	block    TextBlock
	snapshot []ColorRange
	draft    *ColorRange
	phase    EditPhase
}

// NewEditSession 基于文本块快照创建会话；文本块自带的 DraftRange 被忽略。
func NewEditSession(block TextBlock) *EditSession {
	b := block.Clone()
	b.DraftRange = nil
	return &EditSession{block: b}
}

// Phase 返回当前状态。
func (s *EditSession) Phase() EditPhase { return s.phase }

// Begin 在选区上开始一次编辑。
func (s *EditSession) Begin(draft ColorRange) error {
	if s.phase == EditEditing {
		return ErrEditInProgress
	}
	s.snapshot = append([]ColorRange(nil), s.block.CommittedRanges...)
	d := draft
	s.draft = &d
	s.phase = EditEditing
	return nil
}

// BeginWhole 开始一次覆盖整个文本块的编辑。
func (s *EditSession) BeginWhole(color string) error {
	n := RuneLen(NormalizeText(s.block.Text))
	return s.Begin(ColorRange{Start: 0, End: n, Color: color})
}

// Update 替换草稿区间，拖拽或选区变化时会被频繁调用。
func (s *EditSession) Update(draft ColorRange) error {
	if s.phase != EditEditing {
		return ErrNoActiveEdit
	}
	d := draft
	s.draft = &d
	return nil
}

// Confirm 用与渲染相同的合成算法把草稿并入已提交区间，然后丢弃草稿。
func (s *EditSession) Confirm() (TextBlock, error) {
	if s.phase != EditEditing {
		return TextBlock{}, ErrNoActiveEdit
	}
	s.block.CommittedRanges = ResolveText(s.block.Text, s.block.CommittedRanges, s.draft)
	s.draft = nil
	s.snapshot = nil
	s.phase = EditConfirmed
	return s.block.Clone(), nil
}

// Cancel 恢复编辑前的已提交区间并丢弃草稿。
func (s *EditSession) Cancel() (TextBlock, error) {
	if s.phase != EditEditing {
		return TextBlock{}, ErrNoActiveEdit
	}
	s.block.CommittedRanges = s.snapshot
	s.draft = nil
	s.snapshot = nil
	s.phase = EditCancelled
	return s.block.Clone(), nil
}

// Block 返回当前不可变快照；编辑中时附带草稿区间。
func (s *EditSession) Block() TextBlock {
	b := s.block.Clone()
	if s.draft != nil {
		d := *s.draft
		b.DraftRange = &d
	}
	return b
}

// Compose 对当前快照运行共用管线，每次输入后调用即可。
func (s *EditSession) Compose(scale float64) Composition {
	return Compose(s.Block(), scale)
}
