// Package text holds Line, an immutable sequence of literal text and style
// directives rendered left to right.
package text

import (
	"fmt"
	"slices"
	"strings"
	"ttyscreen/internal/ansiesc"
	"unicode/utf8"
)

type Kind int

const (
	KindText Kind = iota
	KindStyle
)

type StyleKind int

const (
	StyleInverse StyleKind = iota
	StyleReset
	StyleColor
)

type Style struct {
	Kind StyleKind
	Fg   ansiesc.Color
	Bg   ansiesc.Color
}

// Sequence returns the escape bytes for s.
func (s Style) Sequence() (string, error) {
	switch s.Kind {
	case StyleInverse:
		return ansiesc.Inverse(), nil
	case StyleReset:
		return ansiesc.Reset(), nil
	case StyleColor:
		return ansiesc.SetColor(s.Fg, s.Bg)
	default:
		return "", fmt.Errorf("unknown style kind %d", s.Kind)
	}
}

// ParseStyle accepts "inverse", "reset", a color name, or "fg_bg".
func ParseStyle(name string) (Style, error) {
	switch name {
	case "inverse":
		return Style{Kind: StyleInverse}, nil
	case "reset":
		return Style{Kind: StyleReset}, nil
	}

	fgName, bgName, found := strings.Cut(name, "_")
	if !found {
		bgName = "default"
	}

	fg, err := ansiesc.ParseColor(fgName)
	if err != nil {
		return Style{}, fmt.Errorf("parse style %q: %w", name, err)
	}

	bg, err := ansiesc.ParseColor(bgName)
	if err != nil {
		return Style{}, fmt.Errorf("parse style %q: %w", name, err)
	}

	return Style{Kind: StyleColor, Fg: fg, Bg: bg}, nil
}

// Part is anything From accepts: a Component or a *Line.
type Part interface {
	appendTo(dst []Component) []Component
}

type Component struct {
	Kind  Kind
	Text  string
	Style Style
}

func (c Component) appendTo(dst []Component) []Component {
	return append(dst, c)
}

func Str(s string) Component {
	return Component{Kind: KindText, Text: s}
}

func Inverse() Component {
	return Component{Kind: KindStyle, Style: Style{Kind: StyleInverse}}
}

func Reset() Component {
	return Component{Kind: KindStyle, Style: Style{Kind: StyleReset}}
}

func Color(fg, bg ansiesc.Color) Component {
	return Component{Kind: KindStyle, Style: Style{Kind: StyleColor, Fg: fg, Bg: bg}}
}

func Styled(s Style) Component {
	return Component{Kind: KindStyle, Style: s}
}

type Line struct {
	components []Component
}

// From builds a Line from parts in order. A lone *Line is returned as is.
func From(parts ...Part) *Line {
	if len(parts) == 1 {
		if l, ok := parts[0].(*Line); ok && l != nil {
			return l
		}
	}

	components := make([]Component, 0, len(parts))
	for _, p := range parts {
		if p == nil {
			continue
		}

		components = p.appendTo(components)
	}

	return &Line{components: components}
}

func (l *Line) appendTo(dst []Component) []Component {
	if l == nil {
		return dst
	}

	return append(dst, l.components...)
}

func (l *Line) Components() []Component {
	if l == nil {
		return nil
	}

	return slices.Clone(l.components)
}

func (l *Line) Concat(other *Line) *Line {
	components := make([]Component, 0, len(l.Components())+len(other.Components()))
	components = l.appendTo(components)
	components = other.appendTo(components)

	return &Line{components: components}
}

func (l *Line) Equal(other *Line) bool {
	return slices.Equal(l.Components(), other.Components())
}

// Len is the number of runes across text components.
func (l *Line) Len() int {
	n := 0
	for _, c := range l.Components() {
		if c.Kind == KindText {
			n += utf8.RuneCountInString(c.Text)
		}
	}

	return n
}

// String returns the concatenated literal text without styles.
func (l *Line) String() string {
	var b strings.Builder
	for _, c := range l.Components() {
		if c.Kind == KindText {
			b.WriteString(c.Text)
		}
	}

	return b.String()
}

// Truncate keeps at most width runes of text. Every rune counts as one
// column. Style components are kept even once the budget is spent.
func (l *Line) Truncate(width int) *Line {
	remaining := max(width, 0)

	components := l.Components()
	for i, c := range components {
		if c.Kind != KindText {
			continue
		}

		kept := prefix(c.Text, remaining)
		remaining -= utf8.RuneCountInString(kept)
		components[i].Text = kept
	}

	return &Line{components: components}
}

func prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}

	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}

	return s
}

// ExpandTabs returns l with the tabs of every text component expanded, so
// that Len matches the columns the line occupies.
func (l *Line) ExpandTabs() *Line {
	components := l.Components()
	for i, c := range components {
		if c.Kind == KindText {
			components[i].Text = ExpandTabs(c.Text)
		}
	}

	return &Line{components: components}
}

const TabWidth = 8

// ExpandTabs replaces each tab with spaces up to the next multiple of
// TabWidth. Columns restart after a newline.
func ExpandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + TabWidth)

	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			pad := TabWidth - col%TabWidth
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}

	return b.String()
}
