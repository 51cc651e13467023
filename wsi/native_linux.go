// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build linux

package wsi

import "github.com/go-gl/glfw/v3.3/glfw"

// nativeHandle returns the X11 display/window pair the wgpu backend
// needs to create a surface, replacing the teacher's own XCB
// connection/window retrieval in wsi_xcb.go with glfw's equivalent
// native accessors.
func nativeHandle(w *glfw.Window) (display, window uintptr) {
	return uintptr(glfw.GetX11Display()), uintptr(w.GetX11Window())
}
