package shaders

import (
	_ "embed"
)

//go:embed forward.wgsl
var ForwardWGSL string

const (
	VertexEntry = "vs_main"
	ColorEntry  = "fs_color"
	LitEntry    = "fs_lit"
	DepthEntry  = "fs_depth"
)
