package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/panelhost/canvas/internal/artifact"
	"github.com/panelhost/canvas/internal/textdiff"
)

type diffRenderer struct {
	// maxLines caps each input side; 0 means uncapped. Inputs beyond
	// the cap are shown side by side without alignment instead of
	// stalling the message-processing path on an O(n·m) table.
	maxLines int
}

func (r *diffRenderer) Type() artifact.Type { return artifact.TypeDiff }

func (r *diffRenderer) Render(a *artifact.Artifact) (string, error) {
	diff, err := a.DecodeDiff()
	if err != nil {
		return "", fmt.Errorf("decoding diff payload: %w", err)
	}

	original := textdiff.SplitLines(diff.Original)
	modified := textdiff.SplitLines(diff.Modified)

	alignment, err := textdiff.DiffMax(original, modified, r.maxLines)
	if errors.Is(err, textdiff.ErrTooLarge) {
		return page(a.DisplayTitle(), unalignedBody(diff)), nil
	}
	if err != nil {
		return "", fmt.Errorf("aligning diff: %w", err)
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf(
		`<div class="diff-stats">%s → %s &nbsp; <span class="added">+%d</span> <span class="removed">−%d</span></div>`,
		escape(labelOr(diff.OriginalPath, "original")),
		escape(labelOr(diff.ModifiedPath, "modified")),
		alignment.AddedCount, alignment.RemovedCount))

	body.WriteString(`<table class="diff"><tbody>`)
	for i := range alignment.Left {
		left, right := alignment.Left[i], alignment.Right[i]
		body.WriteString(fmt.Sprintf(`<tr class="%s">`, rowClass(left, right)))
		writeDiffCell(&body, left)
		writeDiffCell(&body, right)
		body.WriteString("</tr>")
	}
	body.WriteString("</tbody></table>")

	return page(a.DisplayTitle(), body.String()), nil
}

// rowClass picks the display class for a row pair: a non-same side
// wins over a same/empty one.
func rowClass(left, right textdiff.Row) string {
	switch {
	case left.Kind == textdiff.KindRemoved:
		return "removed"
	case right.Kind == textdiff.KindAdded:
		return "added"
	default:
		return "same"
	}
}

func writeDiffCell(sb *strings.Builder, row textdiff.Row) {
	if row.Kind == textdiff.KindEmpty {
		sb.WriteString(`<td class="num"></td><td class="line"></td>`)
		return
	}
	fmt.Fprintf(sb, `<td class="num">%d</td><td class="line">%s</td>`, row.SourceLine, escape(row.Content))
}

// unalignedBody shows both sides escaped but without per-line
// alignment, for inputs past the diff cap.
func unalignedBody(diff artifact.Diff) string {
	return fmt.Sprintf(
		`<p>Input too large for line alignment; showing both versions.</p>`+
			`<h3>%s</h3><pre>%s</pre><h3>%s</h3><pre>%s</pre>`,
		escape(labelOr(diff.OriginalPath, "original")), escape(diff.Original),
		escape(labelOr(diff.ModifiedPath, "modified")), escape(diff.Modified))
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
