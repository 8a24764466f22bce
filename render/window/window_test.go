package window

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/emotesky/ecs/debugui"
	"github.com/stretchr/testify/assert"
)

func keys(down ...ebiten.Key) func(ebiten.Key) bool {
	return func(k ebiten.Key) bool {
		for _, d := range down {
			if d == k {
				return true
			}
		}
		return false
	}
}

func TestQuitRequested(t *testing.T) {
	tests := []struct {
		name  string
		down  []ebiten.Key
		input debugui.InputState
		quit  bool
	}{
		{"no keys", nil, debugui.InputState{}, false},
		{"q", []ebiten.Key{ebiten.KeyQ}, debugui.InputState{}, true},
		{"escape", []ebiten.Key{ebiten.KeyEscape}, debugui.InputState{}, true},
		{"other key", []ebiten.Key{ebiten.KeyA}, debugui.InputState{}, false},
		{"typing into the overlay", []ebiten.Key{ebiten.KeyQ}, debugui.InputState{WantCaptureKeyboard: true}, false},
		{"escape in the overlay", []ebiten.Key{ebiten.KeyEscape}, debugui.InputState{WantCaptureKeyboard: true}, false},
		{"overlay holds only the mouse", []ebiten.Key{ebiten.KeyQ}, debugui.InputState{WantCaptureMouse: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.quit, quitRequested(keys(tt.down...), tt.input))
		})
	}
}

func TestPlaceholderColorIsStable(t *testing.T) {
	assert.Equal(t, placeholderColor("Kappa"), placeholderColor("Kappa"))
	assert.GreaterOrEqual(t, placeholderColor("LUL").R, uint8(150))
}
