// Package frontmatter parses and renders article front-matter: a YAML block
// fenced by "---" lines, followed by an opaque body. The body (embedded code
// fragments and images included) is carried verbatim and never interpreted.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter is returned when the document does not start
	// with a front-matter fence
	ErrMissingFrontMatter = errors.New("frontmatter: document does not start with ---")
	// ErrUnterminatedFrontMatter is returned when the closing fence is missing
	ErrUnterminatedFrontMatter = errors.New("frontmatter: closing --- fence not found")
)

var fence = []byte("---\n")

// Date is a calendar date serialized in ISO-8601 form (2006-01-02).
// RFC 3339 timestamps are accepted on input and truncated to their date.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("frontmatter: invalid date %q: %w", s, err)
	}
	d.Time = t.Truncate(24 * time.Hour)
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.Format("2006-01-02"), nil
}

// TagSet is a set of article tags: deduplicated, order-independent
type TagSet []string

func (ts *TagSet) UnmarshalYAML(value *yaml.Node) error {
	var raw []string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	*ts = out
	return nil
}

// Has reports whether the set contains a tag
func (ts TagSet) Has(tag string) bool {
	for _, t := range ts {
		if t == tag {
			return true
		}
	}
	return false
}

// Meta is the front-matter of one article. Keys beyond the well-known three
// are preserved in Extra and survive a round trip.
type Meta struct {
	Title string         `yaml:"title"`
	Date  Date           `yaml:"date"`
	Tags  TagSet         `yaml:"tags,omitempty"`
	Extra map[string]any `yaml:",inline"`
}

// Document is parsed front-matter plus the verbatim body
type Document struct {
	Meta    Meta
	Content []byte
}

// Parse splits src into front-matter and body. The document must begin with
// a "---" fence; everything after the closing fence is the body, untouched.
func Parse(src []byte) (*Document, error) {
	if !bytes.HasPrefix(src, fence) {
		return nil, ErrMissingFrontMatter
	}

	rest := src[len(fence):]
	end := bytes.Index(rest, fence)
	var content []byte
	switch {
	case end >= 0:
		content = rest[end+len(fence):]
	case bytes.HasSuffix(rest, []byte("\n---")):
		// Closing fence at EOF without a trailing newline
		end = len(rest) - len("---")
	default:
		return nil, ErrUnterminatedFrontMatter
	}

	var meta Meta
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}

	return &Document{Meta: meta, Content: content}, nil
}

// Render writes the document back to fenced form. The body is emitted
// byte-for-byte as parsed.
func (d *Document) Render() ([]byte, error) {
	metaYAML, err := yaml.Marshal(&d.Meta)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(fence)
	buf.Write(metaYAML)
	buf.Write(fence)
	buf.Write(d.Content)
	return buf.Bytes(), nil
}
