package graphics

import "embed"

// Shaders holds the GLSL sources used by the renderables.
//
//go:embed shaders/*.vert shaders/*.frag
var Shaders embed.FS
