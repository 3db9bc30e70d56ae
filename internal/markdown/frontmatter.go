package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// SplitFrontMatter decodes the YAML frontmatter of source into meta and
// returns the Markdown body without delimiters. Documents without
// frontmatter return their full content and leave meta untouched.
func SplitFrontMatter(source []byte, meta any) ([]byte, error) {
	body, err := frontmatter.Parse(bytes.NewReader(source), meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return body, nil
}
