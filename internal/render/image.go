package render

import (
	"fmt"
	"strings"

	"github.com/panelhost/canvas/internal/artifact"
)

type imageRenderer struct{}

func (r *imageRenderer) Type() artifact.Type { return artifact.TypeImage }

func (r *imageRenderer) Render(a *artifact.Artifact) (string, error) {
	img, err := a.DecodeImage()
	if err != nil {
		return "", fmt.Errorf("decoding image payload: %w", err)
	}
	if img.Src == "" {
		return "", fmt.Errorf("image artifact needs a src")
	}

	var attrs strings.Builder
	fmt.Fprintf(&attrs, `src="%s"`, escape(img.Src))
	if img.Alt != "" {
		fmt.Fprintf(&attrs, ` alt="%s"`, escape(img.Alt))
	}
	if img.Width > 0 {
		fmt.Fprintf(&attrs, ` width="%d"`, img.Width)
	}
	if img.Height > 0 {
		fmt.Fprintf(&attrs, ` height="%d"`, img.Height)
	}

	body := fmt.Sprintf(`<img %s style="max-width:100%%">`, attrs.String())
	return page(a.DisplayTitle(), body), nil
}
