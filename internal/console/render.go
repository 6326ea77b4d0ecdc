// Package console renders the admin dashboard to a terminal and turns typed
// commands into dashboard actions.
package console

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vidfriends/admin/internal/dashboard"
)

const (
	title    = "Admin Control Panel"
	subtitle = "Manage system users, roles, and global video content."

	videosHeading   = "All Uploaded Videos"
	loadingMessage  = "Syncing with database..."
	noVideosMessage = "No videos have been uploaded to the platform yet."

	ruleWidth = 72
)

// Renderer draws a dashboard.View as plain text.
type Renderer struct {
	printer *message.Printer
	table   UserTable
	card    VideoCard
}

// NewRenderer returns a Renderer formatting numbers for English.
func NewRenderer() *Renderer {
	return &Renderer{printer: message.NewPrinter(language.English)}
}

// Badge formats the video count badge.
func (r *Renderer) Badge(count int) string {
	return r.printer.Sprintf("%d Videos Total", count)
}

// Render writes the whole dashboard to w.
func (r *Renderer) Render(w io.Writer, view dashboard.View) error {
	ew := &errWriter{w: w}

	renderHeader(ew, view.CurrentUser)

	ew.printf("%s\n%s\n\n", title, subtitle)

	r.table.Render(ew, view.Users)

	ew.printf("\n%s\n", strings.Repeat("-", ruleWidth))

	badge := "[" + r.Badge(view.VideoCount()) + "]"
	pad := ruleWidth - len(videosHeading) - len(badge)
	if pad < 1 {
		pad = 1
	}
	ew.printf("%s%s%s\n\n", videosHeading, strings.Repeat(" ", pad), badge)

	switch view.Section {
	case dashboard.SectionLoading:
		ew.printf("    %s\n", loadingMessage)
	case dashboard.SectionEmpty:
		ew.printf("    %s\n", noVideosMessage)
	default:
		for i, props := range view.Cards {
			r.card.Render(ew, i+1, props)
		}
	}

	return ew.err
}

// errWriter remembers the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e, format, args...)
}
