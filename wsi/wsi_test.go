// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"errors"
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow is a Window stub used to exercise the registry
// (NewWindow/Windows/Close) without a real display, since CI has
// none.
type fakeWindow struct {
	width, height int
	title         string
}

func (w *fakeWindow) Map() error                              { return nil }
func (w *fakeWindow) Unmap() error                             { return nil }
func (w *fakeWindow) Resize(width, height int) error {
	w.width, w.height = width, height
	return nil
}
func (w *fakeWindow) SetTitle(title string) error { w.title = title; return nil }
func (w *fakeWindow) Close()                       { closeWindow(w) }
func (w *fakeWindow) Width() int                   { return w.width }
func (w *fakeWindow) Height() int                  { return w.height }
func (w *fakeWindow) Title() string                { return w.title }
func (w *fakeWindow) NativeHandle() (uintptr, uintptr) { return 0, 0 }
func (w *fakeWindow) Extent() (int, int)               { return w.width, w.height }

func withFakeBackend(t *testing.T) {
	t.Helper()
	prev := newWindow
	newWindow = func(width, height int, title string) (Window, error) {
		return &fakeWindow{width: width, height: height, title: title}, nil
	}
	t.Cleanup(func() { newWindow = prev })
}

func TestNewWindowRegistersAndClose(t *testing.T) {
	withFakeBackend(t)

	win, err := NewWindow(480, 360, "test window")
	require.NoError(t, err)
	require.NotNil(t, win)
	assert.Len(t, Windows(), 1)

	win.Close()
	assert.Len(t, Windows(), 0)
}

func TestNewWindowRejectsUnavailableBackend(t *testing.T) {
	prev := newWindow
	newWindow = func(int, int, string) (Window, error) { return nil, errMissing }
	t.Cleanup(func() { newWindow = prev })

	win, err := NewWindow(480, 360, "will fail")
	assert.Nil(t, win)
	assert.True(t, errors.Is(err, errMissing))
}

func TestKeyFromMapsKnownAndUnknownCodes(t *testing.T) {
	assert.Equal(t, KeyA, keyFrom(glfw.KeyA))
	assert.Equal(t, KeyEsc, keyFrom(glfw.KeyEscape))
	assert.Equal(t, KeyUnknown, keyFrom(glfw.Key(-1)))
}

func TestModFromCombinesFlags(t *testing.T) {
	m := modFrom(glfw.ModShift | glfw.ModControl)
	assert.Equal(t, ModShift|ModCtrl, m)
}
