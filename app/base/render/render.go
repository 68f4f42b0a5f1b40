/*
Package render turns the markdown our help templates produce into text for a terminal.

Only the handful of markdown features the templates use are understood:
headings, paragraphs, and inline text.  Everything else passes through as plain text.
*/
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
	"golang.org/x/term"
)

type Mode uint8

const (
	Mode_Markdown Mode = iota // Plain, honorable, and indentation-free markdown.
	Mode_ANSI                 // Text annotated with terminal ANSI codes for color, indented by heading depth, and wrapped to the terminal width.
)

func (m Mode) String() string {
	switch m {
	case Mode_Markdown:
		return "markdown"
	case Mode_ANSI:
		return "ansi"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Detect picks Mode_ANSI when wr is a terminal, and Mode_Markdown otherwise.
func Detect(wr io.Writer) Mode {
	if fd, ok := wr.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(fd.Fd())) {
		return Mode_ANSI
	}
	return Mode_Markdown
}

// Render converts markdown and writes it to wr.
//
// In Mode_ANSI, the terminal width is detected (when wr is a terminal) and used for wrapping.
// Render in plain markdown mode can be used as a sort of fmt'er for template output,
// which tends to come out with unhelpful whitespace.
func Render(markdown []byte, wr io.Writer, m Mode) error {
	width := -1
	if fd, ok := wr.(interface{ Fd() uintptr }); ok {
		width, _, _ = term.GetSize(int(fd.Fd()))
		if width > 0 && width < 60 {
			width = 60
		}
	}
	md := goldmark.New(
		goldmark.WithRenderer(renderer.NewRenderer(
			renderer.WithNodeRenderers(
				util.Prioritized(&gmRenderer{mode: m, width: width}, 1),
			),
		)),
	)
	return md.Convert(markdown, wr)
}

type gmRenderer struct {
	mode  Mode
	width int
}

// RegisterFuncs is to meet `goldmark/renderer.NodeRenderer`.
// Kinds without a func are walked through without output of their own.
func (r *gmRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindParagraph, r.renderParagraph)
	reg.Register(ast.KindRawHTML, r.renderRawHTML) // in help text, these are flag placeholders like <FILE>
	reg.Register(ast.KindText, r.renderText)
	reg.Register(ast.KindEmphasis, r.renderEmphasis)
}

func (r *gmRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if !entering {
		if r.mode == Mode_ANSI {
			writeAnsi(w, ansiReset)
		}
		w.WriteByte('\n')
		return ast.WalkContinue, nil
	}
	switch r.mode {
	case Mode_Markdown:
		w.WriteString(strings.Repeat("#", n.Level) + " ")
	case Mode_ANSI:
		switch n.Level {
		case 1, 2:
			writeAnsi(w, ansiBold, ansiFgHiMagenta)
		case 3:
			w.WriteString(strings.Repeat(" ", 4))
			writeAnsi(w, ansiBold, ansiFgHiCyan)
		default:
			w.WriteString(strings.Repeat(" ", 8))
			writeAnsi(w, ansiBold, ansiFgHiBlue)
		}
	default:
		return ast.WalkStop, fmt.Errorf("unsupported render mode %s", r.mode)
	}
	return ast.WalkContinue, nil
}

func (r *gmRenderer) renderParagraph(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		w.WriteByte('\n')
		return ast.WalkContinue, nil
	}
	switch r.mode {
	case Mode_Markdown:
		// The source lines, so inline markup survives.
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			w.Write(bytes.TrimRight(seg.Value(source), "\n"))
			w.WriteByte('\n')
		}
	case Mode_ANSI:
		left := 4 * nearestHeading(node)
		body := plainText(node, source)
		if r.width > 0 {
			body = wordwrap.Bytes(body, r.width-2-left)
		}
		body = indent.Bytes(body, uint(left))
		w.Write(body)
		w.WriteByte('\n')
	default:
		return ast.WalkStop, fmt.Errorf("unsupported render mode %s", r.mode)
	}
	return ast.WalkSkipChildren, nil
}

func (r *gmRenderer) renderText(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.Write(node.Text(source))
	}
	return ast.WalkContinue, nil
}

func (r *gmRenderer) renderEmphasis(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Emphasis)
	switch r.mode {
	case Mode_Markdown:
		w.WriteString(strings.Repeat("*", n.Level))
	case Mode_ANSI:
		if entering {
			writeAnsi(w, ansiBold)
		} else {
			writeAnsi(w, ansiResetBold)
		}
	}
	return ast.WalkContinue, nil
}

// Raw HTML in our help is really just bracket characters, so the plain text passes through.
func (r *gmRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		n := node.(*ast.RawHTML)
		for i := 0; i < n.Segments.Len(); i++ {
			segment := n.Segments.At(i)
			w.Write(segment.Value(source))
		}
	}
	return ast.WalkContinue, nil
}

// nearestHeading returns the level of the closest heading before node, or 0 if there is none.
func nearestHeading(node ast.Node) int {
	for sib := node.PreviousSibling(); sib != nil; sib = sib.PreviousSibling() {
		switch sib.Kind() {
		case ast.KindHeading:
			return sib.(*ast.Heading).Level
		case ast.KindThematicBreak:
			return 0
		}
	}
	return 0
}

// plainText collects the text under node without markup, keeping line breaks.
func plainText(node ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			buf.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.RawHTML:
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				buf.Write(seg.Value(source))
			}
		default:
			buf.Write(plainText(c, source))
		}
	}
	return buf.Bytes()
}
