// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/kestrel-engine/kestrel/rhi"
)

var _ rhi.Window = (*glfwWindow)(nil)

func init() {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		initDummy()
		return
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // the RHI backend owns the graphics context
	newWindow = newWindowGLFW
	dispatch = glfw.PollEvents
	setAppName = setAppNameGLFW
	platform = GLFW
}

func initDummy() {
	newWindow = newWindowDummy
	dispatch = func() {}
	setAppName = func(string) {}
	platform = None
}

func newWindowDummy(int, int, string) (Window, error) {
	return nil, errMissing
}

var errMissing = fmt.Errorf("wsi: no window system available")

func setAppNameGLFW(string) {
	// glfw has no application-name concept on X11/Win32; the title
	// string carries identity instead.
}

type glfwWindow struct {
	win    *glfw.Window
	title  string
	mapped bool
}

func newWindowGLFW(width, height int, title string) (Window, error) {
	gw, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("wsi: glfw.CreateWindow: %w", err)
	}
	w := &glfwWindow{win: gw, title: title}

	gw.SetCloseCallback(func(*glfw.Window) {
		if windowHandler != nil {
			windowHandler.WindowClose(w)
		}
	})
	gw.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		if windowHandler != nil {
			windowHandler.WindowResize(w, width, height)
		}
	})
	gw.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if keyboardHandler == nil {
			return
		}
		if focused {
			keyboardHandler.KeyboardIn(w)
		} else {
			keyboardHandler.KeyboardOut(w)
		}
	})
	gw.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if keyboardHandler == nil {
			return
		}
		keyboardHandler.KeyboardKey(keyFrom(key), action != glfw.Release, modFrom(mods))
	})
	gw.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if pointerHandler == nil {
			return
		}
		x, y := gw.GetCursorPos()
		if entered {
			pointerHandler.PointerIn(w, int(x), int(y))
		} else {
			pointerHandler.PointerOut(w)
		}
	})
	gw.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if pointerHandler != nil {
			pointerHandler.PointerMotion(int(x), int(y))
		}
	})
	gw.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if pointerHandler == nil {
			return
		}
		x, y := gw.GetCursorPos()
		pointerHandler.PointerButton(btnFrom(button), action != glfw.Release, int(x), int(y))
	})

	return w, nil
}

func (w *glfwWindow) Map() error {
	w.win.Show()
	w.mapped = true
	return nil
}

func (w *glfwWindow) Unmap() error {
	w.win.Hide()
	w.mapped = false
	return nil
}

func (w *glfwWindow) Resize(width, height int) error {
	w.win.SetSize(width, height)
	return nil
}

func (w *glfwWindow) SetTitle(title string) error {
	w.win.SetTitle(title)
	w.title = title
	return nil
}

func (w *glfwWindow) Close() {
	closeWindow(w)
	w.win.Destroy()
}

func (w *glfwWindow) Width() int  { width, _ := w.win.GetSize(); return width }
func (w *glfwWindow) Height() int { _, height := w.win.GetSize(); return height }
func (w *glfwWindow) Title() string { return w.title }

func (w *glfwWindow) Extent() (width, height int) { return w.win.GetFramebufferSize() }

func (w *glfwWindow) NativeHandle() (display, window uintptr) { return nativeHandle(w.win) }

func modFrom(m glfw.ModifierKey) Modifier {
	var mod Modifier
	if m&glfw.ModShift != 0 {
		mod |= ModShift
	}
	if m&glfw.ModControl != 0 {
		mod |= ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		mod |= ModAlt
	}
	if m&glfw.ModCapsLock != 0 {
		mod |= ModCapsLock
	}
	return mod
}

func btnFrom(b glfw.MouseButton) Button {
	switch b {
	case glfw.MouseButtonLeft:
		return BtnLeft
	case glfw.MouseButtonRight:
		return BtnRight
	case glfw.MouseButtonMiddle:
		return BtnMiddle
	default:
		return BtnUnknown
	}
}
