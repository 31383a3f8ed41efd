// Package antpath matches branch names against Ant-style path patterns.
//
// A pattern is split into segments by "/". Within a segment "*" matches any run of characters
// and "?" matches exactly one character; neither crosses a "/". A segment consisting of "**"
// matches zero or more whole segments, so "feature/**" matches "feature", "feature/a" and
// "feature/a/b", while "feature/*" matches only "feature/a".
package antpath

import (
	"github.com/gobwas/glob"
	"strings"
)

// Separator is the segment separator of the branch names.
const Separator = '/'

// Pattern is a compiled Ant-style pattern.
type Pattern struct {
	raw   string
	globs []glob.Glob
}

// Compile translates the Ant-style pattern to the glob syntax and compiles it.
func Compile(pattern string) (Pattern, error) {
	variants := translate(pattern)
	p := Pattern{raw: pattern, globs: make([]glob.Glob, len(variants))}
	for i, v := range variants {
		g, err := glob.Compile(v, Separator)
		if err != nil {
			return Pattern{}, err
		}
		p.globs[i] = g
	}
	return p, nil
}

// Match reports whether the path matches the pattern.
func (p Pattern) Match(path string) bool {
	for _, g := range p.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// String returns the source pattern.
func (p Pattern) String() string {
	return p.raw
}

// Match compiles the pattern and matches the path against it.
func Match(pattern, path string) (bool, error) {
	p, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return p.Match(path), nil
}

// Split splits the comma-delimited pattern list, trimming spaces and skipping empty entries.
func Split(patterns string) []string {
	parts := strings.Split(patterns, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		res = append(res, p)
	}
	return res
}

// translate returns the glob variants of the pattern. The glob "**" needs at least the
// separators around it, so every "**" segment yields a variant with and without it.
func translate(pattern string) []string {
	segments := collapse(strings.Split(pattern, string(Separator)))
	variants := [][]string{nil}
	for _, seg := range segments {
		if seg != "**" {
			var b strings.Builder
			writeSegment(&b, seg)
			for i := range variants {
				variants[i] = append(variants[i], b.String())
			}
			continue
		}
		if len(segments) == 1 {
			return []string{"**"}
		}
		n := len(variants)
		for i := 0; i < n; i++ {
			kept := append(append([]string(nil), variants[i]...), "**")
			variants = append(variants, kept)
		}
	}
	res := make([]string, len(variants))
	for i, v := range variants {
		res[i] = strings.Join(v, string(Separator))
	}
	return res
}

// collapse merges consecutive "**" segments, they match the same paths as a single one.
func collapse(segments []string) []string {
	res := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "**" && len(res) > 0 && res[len(res)-1] == "**" {
			continue
		}
		res = append(res, seg)
	}
	return res
}

func writeSegment(b *strings.Builder, seg string) {
	star := false
	for _, r := range seg {
		switch r {
		case '*':
			// a run of stars inside a segment never crosses the separator
			if !star {
				b.WriteRune('*')
			}
			star = true
			continue
		case '?':
			b.WriteRune('?')
		default:
			b.WriteString(glob.QuoteMeta(string(r)))
		}
		star = false
	}
}
