package output

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Console writes human-facing status lines. It is safe for concurrent use;
// each line is written atomically so output from parallel workers never
// interleaves mid-line.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	noColor bool
}

// NewConsole creates a console writing to w. A nil writer means stdout.
func NewConsole(w io.Writer, noColor bool) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w, noColor: noColor}
}

// ItemOK prints an indented success line for a single item.
func (c *Console) ItemOK(format string, args ...interface{}) {
	c.line(" "+SuccessIcon(c.noColor)+" ", format, args...)
}

// ItemFail prints an indented failure line for a single item.
func (c *Console) ItemFail(format string, args ...interface{}) {
	c.line(" "+ErrorIcon(c.noColor)+" ", format, args...)
}

// ItemNotice prints an indented informational line.
func (c *Console) ItemNotice(format string, args ...interface{}) {
	c.line(" "+ArrowIcon(c.noColor)+" ", format, args...)
}

// OK prints a top-level success line.
func (c *Console) OK(format string, args ...interface{}) {
	c.line(SuccessIcon(c.noColor)+" ", format, args...)
}

// Fail prints a top-level failure line.
func (c *Console) Fail(format string, args ...interface{}) {
	c.line(ErrorIcon(c.noColor)+" ", format, args...)
}

// Print writes s without a trailing newline.
func (c *Console) Print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, s)
}

func (c *Console) line(prefix, format string, args ...interface{}) {
	msg := prefix + fmt.Sprintf(format, args...) + "\n"

	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, msg)
}
