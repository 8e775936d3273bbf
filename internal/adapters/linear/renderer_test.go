package linear_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/darling/internal/adapters/linear"
)

func newRenderer(t *testing.T) (*linear.Renderer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	return linear.NewRenderer(buf), buf
}

func TestRenderer_Lifecycle(t *testing.T) {
	r, buf := newRenderer(t)
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	r.OnStepStart("root", "", "rebuild", start)
	r.OnStepStart("a", "root", "install pacman/ripgrep", start)
	r.OnStepComplete("a", start.Add(1200*time.Millisecond), nil)
	r.OnStepStart("b", "root", "install pacman/fd", start)
	r.OnStepComplete("b", start.Add(300*time.Millisecond), errors.New("exit status 1"))
	r.OnStepComplete("root", start.Add(2*time.Second), nil)

	g := goldie.New(t)
	g.Assert(t, "lifecycle", buf.Bytes())
}

func TestRenderer_Disabled(t *testing.T) {
	r, buf := newRenderer(t)
	r.SetEnabled(false)

	now := time.Now()
	r.OnStepStart("a", "root", "install npm/typescript", now)
	r.OnStepComplete("a", now, nil)

	assert.Empty(t, buf.String())
}

func TestRenderer_UnknownSpan(t *testing.T) {
	r, buf := newRenderer(t)

	r.OnStepComplete("missing", time.Now(), nil)

	assert.Empty(t, buf.String())
}

func TestRenderer_SetOutput(t *testing.T) {
	r, first := newRenderer(t)
	second := &bytes.Buffer{}
	r.SetOutput(second)

	now := time.Now()
	r.OnStepStart("a", "root", "list cargo", now)

	assert.Empty(t, first.String())
	assert.Equal(t, "→ list cargo\n", second.String())
}
