package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

const boxWidth = 74

// padRight pads a string to a fixed display width using spaces.
// Handles CJK and other wide characters correctly.
func padRight(s string, targetWidth int) string {
	return runewidth.FillRight(truncateToWidth(s, targetWidth), targetWidth)
}

// truncateToWidth truncates a string to fit within a display width.
// Adds "..." suffix if truncation occurs.
func truncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// printBox prints a nicely formatted box with proper alignment.
func printBox(w io.Writer, lines []string, width int) {
	border := strings.Repeat("═", width-2)
	fmt.Fprintf(w, "╔%s╗\n", border)
	for _, line := range lines {
		fmt.Fprintf(w, "║ %s ║\n", padRight(line, width-4))
	}
	fmt.Fprintf(w, "╚%s╝\n", border)
}

func printHeader(w io.Writer, dir, ext string, files int, dryRun bool) {
	lines := []string{
		fmt.Sprintf("Directory: %s", truncateToWidth(dir, boxWidth-15)),
		fmt.Sprintf("Extension: %s", ext),
		fmt.Sprintf("Files:     %d", files),
	}
	if dryRun {
		lines = append(lines, "Dry run: no lookups, no writes")
	}
	fmt.Fprintln(w)
	printBox(w, lines, boxWidth)
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, r *Report) {
	title := "Tagging Complete!"
	if r.Cancelled {
		title = "Tagging Cancelled"
	}
	lines := []string{
		title,
		fmt.Sprintf("Tagged: %d  |  Already tagged: %d  |  Unparsed: %d  |  Failed: %d",
			r.Count(StatusTagged), r.Count(StatusAlreadyTagged), r.Count(StatusUnparsed), r.Count(StatusFailed)),
	}
	if n := r.Count(StatusDryRun); n > 0 {
		lines = append(lines, fmt.Sprintf("Would tag: %d", n))
	}
	fmt.Fprintln(w)
	printBox(w, lines, boxWidth)
}

// progress is the per-batch bar. A nil progress is a no-op so the engine can
// run headless.
type progress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newProgress(p *mpb.Progress, total int) *progress {
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("tagging", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
		),
	)
	return &progress{p: p, bar: bar}
}

func (pr *progress) advance() {
	if pr == nil {
		return
	}
	pr.bar.Increment()
}

// finish waits for the final render. An incomplete bar is aborted so Wait
// returns on cancellation.
func (pr *progress) finish() {
	if pr == nil {
		return
	}
	if !pr.bar.Completed() {
		pr.bar.Abort(false)
	}
	pr.p.Wait()
}
