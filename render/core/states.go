package core

// WriteMask selects which outputs a draw is allowed to modify.
type WriteMask struct {
	Red   bool
	Green bool
	Blue  bool
	Alpha bool
	Depth bool
}

var (
	WriteMaskColorDepth = WriteMask{Red: true, Green: true, Blue: true, Alpha: true, Depth: true}
	WriteMaskColor      = WriteMask{Red: true, Green: true, Blue: true, Alpha: true}
	WriteMaskDepth      = WriteMask{Depth: true}
	WriteMaskNone       = WriteMask{}
)

// HasColor reports whether any color channel is writable.
func (m WriteMask) HasColor() bool {
	return m.Red || m.Green || m.Blue || m.Alpha
}

// DepthTest is the comparison applied between an incoming fragment depth
// and the stored depth. The zero value is DepthTestLess.
type DepthTest uint8

const (
	DepthTestLess DepthTest = iota
	DepthTestAlways
	DepthTestNever
	DepthTestEqual
	DepthTestLessOrEqual
	DepthTestGreater
	DepthTestNotEqual
	DepthTestGreaterOrEqual
)

func (t DepthTest) String() string {
	switch t {
	case DepthTestLess:
		return "less"
	case DepthTestAlways:
		return "always"
	case DepthTestNever:
		return "never"
	case DepthTestEqual:
		return "equal"
	case DepthTestLessOrEqual:
		return "less-or-equal"
	case DepthTestGreater:
		return "greater"
	case DepthTestNotEqual:
		return "not-equal"
	case DepthTestGreaterOrEqual:
		return "greater-or-equal"
	}
	return "unknown"
}

// Passes reports whether a fragment at depth incoming survives against stored.
func (t DepthTest) Passes(incoming, stored float32) bool {
	switch t {
	case DepthTestLess:
		return incoming < stored
	case DepthTestAlways:
		return true
	case DepthTestNever:
		return false
	case DepthTestEqual:
		return incoming == stored
	case DepthTestLessOrEqual:
		return incoming <= stored
	case DepthTestGreater:
		return incoming > stored
	case DepthTestNotEqual:
		return incoming != stored
	case DepthTestGreaterOrEqual:
		return incoming >= stored
	}
	return false
}

// Cull selects which triangle faces are discarded before rasterization.
type Cull uint8

const (
	CullNone Cull = iota
	CullBack
	CullFront
)

// RenderStates is the per-draw fixed function configuration.
type RenderStates struct {
	WriteMask WriteMask
	DepthTest DepthTest
	Cull      Cull
}

// DefaultRenderStates writes every channel, tests depth with Less and culls nothing.
func DefaultRenderStates() RenderStates {
	return RenderStates{
		WriteMask: WriteMaskColorDepth,
		DepthTest: DepthTestLess,
		Cull:      CullNone,
	}
}

// ClearState holds optional clear values per channel. Nil leaves the
// channel untouched.
type ClearState struct {
	Red   *float32
	Green *float32
	Blue  *float32
	Alpha *float32
	Depth *float32
}

func ClearNone() ClearState {
	return ClearState{}
}

func ClearColorDepth(r, g, b, a, depth float32) ClearState {
	return ClearState{Red: &r, Green: &g, Blue: &b, Alpha: &a, Depth: &depth}
}

func ClearColor(r, g, b, a float32) ClearState {
	return ClearState{Red: &r, Green: &g, Blue: &b, Alpha: &a}
}

func ClearDepthOnly(depth float32) ClearState {
	return ClearState{Depth: &depth}
}

// HasColor reports whether any color channel gets cleared.
func (c ClearState) HasColor() bool {
	return c.Red != nil || c.Green != nil || c.Blue != nil || c.Alpha != nil
}

// ColorOr returns the clear color with unset channels filled from fallback.
func (c ClearState) ColorOr(fallback [4]float32) [4]float32 {
	out := fallback
	if c.Red != nil {
		out[0] = *c.Red
	}
	if c.Green != nil {
		out[1] = *c.Green
	}
	if c.Blue != nil {
		out[2] = *c.Blue
	}
	if c.Alpha != nil {
		out[3] = *c.Alpha
	}
	return out
}
