package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// ExportScale 是栅格化导出使用的缩放系数。
const ExportScale = 1.0

// ErrInvalidScale 表示预览面宽度或逻辑宽度不可用。
var ErrInvalidScale = errors.New("layout: 缩放系数无效")

// ScaleBox 把文本块的逻辑几何与字体排印映射到目标坐标系：每个字段都乘以同一个 scale。
// 未设置时 lineHeight 取 fontSize*1.2，letterSpacing 取 0（均在缩放前）。
// 该函数不知道由哪个后端消费，是逻辑坐标到渲染坐标换算的唯一来源。
func ScaleBox(block TextBlock, scale float64) Box {
	t := block.Typography
	g := block.Geometry
	return Box{
		X:             g.X * scale,
		Y:             g.Y * scale,
		W:             g.Width * scale,
		H:             g.Height * scale,
		FontSize:      t.FontSize * scale,
		LineHeight:    t.LineHeight.Resolve(t.FontSize) * scale,
		LetterSpacing: t.LetterSpacing * scale,
		Align:         t.TextAlign,
	}
}

// PreviewScale 返回实时预览面使用的缩放系数：surfaceWidth / logicalWidth。
func PreviewScale(surfaceWidth, logicalWidth float64) (float64, error) {
	if !positiveFinite(surfaceWidth) || !positiveFinite(logicalWidth) {
		return 0, fmt.Errorf("%w: surface=%g logical=%g", ErrInvalidScale, surfaceWidth, logicalWidth)
	}
	return surfaceWidth / logicalWidth, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// CheckBox 是仅在调试时启用的断言：比较期望与实际的缩放几何，误差超过 tolerance 时返回错误。
func CheckBox(want, got Box, tolerance float64) error {
	fields := []struct {
		name      string
		want, got float64
	}{
		{"x", want.X, got.X},
		{"y", want.Y, got.Y},
		{"w", want.W, got.W},
		{"h", want.H, got.H},
		{"fontSize", want.FontSize, got.FontSize},
		{"lineHeight", want.LineHeight, got.LineHeight},
		{"letterSpacing", want.LetterSpacing, got.LetterSpacing},
	}
	for _, f := range fields {
		if math.Abs(f.want-f.got) > tolerance {
			Logger().Debug("scaled geometry mismatch",
				slog.String("field", f.name),
				slog.Float64("want", f.want),
				slog.Float64("got", f.got))
			return fmt.Errorf("几何不一致：%s want=%g got=%g", f.name, f.want, f.got)
		}
	}
	return nil
}
