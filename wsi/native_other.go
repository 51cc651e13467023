// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !linux && !windows

package wsi

import "github.com/go-gl/glfw/v3.3/glfw"

// nativeHandle has no implementation on platforms glfw's native
// accessors don't cover here and returns a zero pair; nothing in this
// module converts that pair into rhi.ErrWindow.
func nativeHandle(w *glfw.Window) (display, window uintptr) {
	return 0, 0
}
