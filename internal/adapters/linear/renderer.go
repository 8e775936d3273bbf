// Package linear provides a synchronous, line-oriented progress renderer.
package linear

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/darling/internal/ui/output"
	"go.trai.ch/darling/internal/ui/style"
)

// Renderer implements ports.Renderer by printing one line when a step starts
// and one when it completes. Root steps only frame an invocation and are not printed.
type Renderer struct {
	out     io.Writer
	output  *termenv.Output
	mu      sync.Mutex
	steps   map[string]*stepState
	enabled bool
}

type stepState struct {
	name      string
	startTime time.Time
	printed   bool
}

// NewRenderer creates a Renderer writing to w, or stderr when w is nil.
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stderr
	}
	return &Renderer{
		out:     w,
		output:  output.New(w),
		steps:   make(map[string]*stepState),
		enabled: true,
	}
}

// SetEnabled turns rendering on or off, for example when logging JSON.
func (r *Renderer) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// SetOutput redirects rendering to w.
func (r *Renderer) SetOutput(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = w
	r.output = output.New(w)
}

// OnStepStart prints the step name.
func (r *Renderer) OnStepStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := &stepState{name: name, startTime: startTime}
	r.steps[spanID] = state

	if !r.enabled || parentID == "" {
		return
	}
	state.printed = true

	arrow := r.output.String(style.Arrow).Foreground(termenv.RGBColor(string(style.Rose))).String()
	_, _ = fmt.Fprintf(r.out, "%s %s\n", arrow, name)
}

// OnStepComplete prints the outcome and duration of a printed step.
func (r *Renderer) OnStepComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.steps[spanID]
	if !ok {
		return
	}
	delete(r.steps, spanID)

	if !state.printed {
		return
	}

	duration := endTime.Sub(state.startTime).Round(time.Millisecond)

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.RGBColor(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.out, "%s %s failed after %v\n", symbol, state.name, duration)
		return
	}

	symbol := r.output.String(style.Check).Foreground(termenv.RGBColor(string(style.Green))).String()
	_, _ = fmt.Fprintf(r.out, "%s %s (%v)\n", symbol, state.name, duration)
}
