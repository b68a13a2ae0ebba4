package render

import (
	"fmt"

	"github.com/panelhost/canvas/internal/artifact"
)

type webRenderer struct{}

func (r *webRenderer) Type() artifact.Type { return artifact.TypeWeb }

// Render embeds caller-provided HTML verbatim, or frames a URL. The
// HTML body of a web artifact is markup by contract, not free text;
// the URL is an attribute value and gets escaped like any other.
func (r *webRenderer) Render(a *artifact.Artifact) (string, error) {
	web, err := a.DecodeWeb()
	if err != nil {
		return "", fmt.Errorf("decoding web payload: %w", err)
	}

	switch {
	case web.HTML != "":
		return page(a.DisplayTitle(), web.HTML), nil
	case web.URL != "":
		body := fmt.Sprintf(
			`<iframe src="%s" style="border:0;width:100%%;height:95vh"></iframe>`,
			escape(web.URL))
		return page(a.DisplayTitle(), body), nil
	default:
		return "", fmt.Errorf("web artifact needs html or url")
	}
}
