package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter shows program loading on a progress bar. The total
// grows as imported files are discovered.
type CLIProgressReporter struct {
	out      io.Writer
	quiet    bool
	bar      *progressbar.ProgressBar
	total    int
	loaded   int
	finished bool
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		out:   out,
		quiet: quiet,
	}
}

func (c *CLIProgressReporter) OnLoadStart(rootFiles int) {
	if c.quiet {
		return
	}
	c.total = rootFiles
	c.loaded = 0
	c.bar = progressbar.NewOptions(rootFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Loading files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileLoaded(fileName string) {
	if c.quiet || c.bar == nil {
		return
	}
	c.loaded++
	if c.loaded > c.total {
		// an import pulled in a file beyond the root set
		c.total = c.loaded
		c.bar.ChangeMax(c.total)
	}
	c.bar.Describe(filepath.Base(fileName))
	_ = c.bar.Add(1)
}

func (c *CLIProgressReporter) OnLoadComplete(files int, duration time.Duration) {
	if c.quiet {
		return
	}
	if c.bar != nil {
		_ = c.bar.Finish()
		c.bar = nil
	}
	c.finished = true
	fmt.Fprintf(c.out, "✓ Loaded %d files in %.1fs\n", files, duration.Seconds())
}
