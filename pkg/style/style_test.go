package style

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderError(t *testing.T) {
	Setup()
	out := RenderError(errors.New("steamcmd exited with code 8"))
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "steamcmd exited with code 8")
}

func TestRenderHalt(t *testing.T) {
	Setup()
	out := RenderHalt("/mnt/server/steam-guard-instructions.txt")
	assert.Contains(t, out, "Steam Guard")
	assert.Contains(t, out, "/mnt/server/steam-guard-instructions.txt")
}
