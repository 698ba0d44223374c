package output

import (
	"bytes"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newBufRenderer(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestModeDefaults(t *testing.T) {
	r, _, _ := newBufRenderer("", false)
	assert.Equal(t, ModeText, r.Mode())

	r, _, _ = newBufRenderer(ModeAuto, false)
	assert.Equal(t, ModeText, r.Mode())

	r, _, _ = newBufRenderer(ModeJSON, false)
	assert.True(t, r.JSONMode())
}

func TestNonTTYOutputHasNoANSI(t *testing.T) {
	r, out, errOut := newBufRenderer(ModeText, false)

	r.Title("Heading")
	r.Success("done")
	r.Warning("careful")
	r.Error("broken")

	assert.False(t, ansiPattern.MatchString(out.String()), "stdout contains ANSI codes: %q", out.String())
	assert.False(t, ansiPattern.MatchString(errOut.String()), "stderr contains ANSI codes: %q", errOut.String())
}

func TestDiagnosticsGoToErrOut(t *testing.T) {
	r, out, errOut := newBufRenderer(ModeText, false)

	r.Info("result line")
	r.Warning("watch out")
	r.Error("failed")

	assert.Contains(t, out.String(), "result line")
	assert.NotContains(t, out.String(), "watch out")
	assert.Contains(t, errOut.String(), "watch out")
	assert.Contains(t, errOut.String(), "failed")
}

func TestLines(t *testing.T) {
	r, out, _ := newBufRenderer(ModeText, false)
	r.Lines([]string{"one", "two"})
	assert.Equal(t, "one\ntwo\n", out.String())
}

func TestJSON(t *testing.T) {
	r, out, _ := newBufRenderer(ModeJSON, false)

	require.NoError(t, r.JSON(map[string]int{"count": 3}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 3, decoded["count"])
}
