package layout

// BuildOptions 配置从 DSL 构建横幅时的行为。
type BuildOptions struct {
	// DefaultFont 在文本未指定 font 且资源中没有 Body 时使用。
	DefaultFont string
}

// DebugOptions 控制渲染后端的调试行为。
type DebugOptions struct {
	// AssertGeometry 让渲染后端在绘制前用 CheckBox 复核缩放几何，仅用于开发。
	AssertGeometry bool
}
