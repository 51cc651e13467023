// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package wsi

import "github.com/go-gl/glfw/v3.3/glfw"

// nativeHandle returns the HWND as window, replacing the teacher's own
// Win32 handle retrieval in wsi_windows.go with glfw's equivalent
// native accessor; display is always 0, as no HINSTANCE is retrieved.
func nativeHandle(w *glfw.Window) (display, window uintptr) {
	return 0, uintptr(w.GetWin32Window())
}
