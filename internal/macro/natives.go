package macro

import (
	"context"
	_ "embed"
)

// Private marker attributes. The renderer never emits them.
const (
	markerImgWidth   = "ss.proc.width"
	markerImgSrc     = "ss.img.processed"
	markerLink       = "ss.link.processed"
	markerScript     = "ss.script.processed"
	markerHead       = "ss.head.processed"
	placeholderTag   = "content"
	nativeSourceName = "native"
)

//go:embed assets/deps.html
var depsHTML string

// Natives is the built-in macro catalogue.
type Natives struct{}

func (Natives) Name() string { return nativeSourceName }

// TagMacros returns the built-in macros in registration order.
func (Natives) TagMacros(ctx context.Context, env *Env) []TagMacro {
	return []TagMacro{
		includeMacro(ctx, env),
		headMacro(),
		linkMacro(env),
		pageNavMacro(env),
		layoutMacro(),
		assetGlobMacro(env),
		imgMacro(env),
		markdownMacro(ctx, env),
		scriptMacro(env),
		noteMacro(),
		texMacro(),
		texBlockMacro(),
		equationMacro(),
	}
}
