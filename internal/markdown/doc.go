// Package markdown renders Markdown to HTML with goldmark and splits YAML
// frontmatter from document bodies. The markdown plugin and the fixture
// importer share it.
package markdown
