package markup

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// markdownRenderer is shared; goldmark converters are safe for concurrent use.
var markdownRenderer = goldmark.New()

// RenderMarkdown converts Markdown source to HTML so it can go through Strip.
func RenderMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}
