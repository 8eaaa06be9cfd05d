// Package writer turns a model graph into the source tree consumed by the
// HLS toolchain. Template files carry line-anchored marker comments; the
// engine replaces each recognized marker line with generated text and copies
// everything else through untouched.
package writer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ml2hw/ml2hw/config"
	"github.com/ml2hw/ml2hw/graph"
)

// projectToken is the reserved project-name token of the template
// vocabulary. Its fully-uppercased variant is used in header guards.
const projectToken = "myproject"

// MissingContextError reports a directive that references data absent from
// the generation context. The file being generated must be discarded.
type MissingContextError struct {
	Directive string
	Key       string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("directive '%s' references missing context value '%s'", e.Directive, e.Key)
}

// Context carries everything directive expansion may reference. It is
// immutable for the duration of a generation call.
type Context struct {
	Config  config.ProjectConfig
	Graph   *graph.Graph
	Network *graph.NetworkConfig
}

func (ctx *Context) replaceTokens(s string) string {
	name := ctx.Config.ProjectName
	s = strings.ReplaceAll(s, strings.ToUpper(projectToken), strings.ToUpper(name))
	return strings.ReplaceAll(s, projectToken, name)
}

// ExpandFunc generates the replacement text for one directive line. The
// original line is passed in so expansions can keep it, reuse its
// indentation or parse a parameter suffix.
type ExpandFunc func(ctx *Context, line string) (string, error)

// Directive binds a marker string to its expansion.
type Directive struct {
	Marker string
	Expand ExpandFunc
}

// Engine applies a fixed directive registry to a template, line by line.
// Generated text is never re-scanned for further directives.
type Engine struct {
	ctx        *Context
	directives []Directive
}

// NewEngine builds an engine over the given registry. Markers are matched
// longest first so that a marker embedding another marker's prefix cannot
// be shadowed by it.
func NewEngine(ctx *Context, directives []Directive) *Engine {
	sorted := make([]Directive, len(directives))
	copy(sorted, directives)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Marker) > len(sorted[j].Marker)
	})
	return &Engine{ctx: ctx, directives: sorted}
}

// Expand processes the template lines in order. Exactly one rule applies to
// each line: the first matching directive, or token replacement, or
// passthrough. Directive output undergoes token replacement as well.
func (e *Engine) Expand(lines []string) ([]string, error) {
	out := []string{}
	for _, line := range lines {
		text, err := e.expandLine(line)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		out = append(out, splitLines(text)...)
	}
	return out, nil
}

func (e *Engine) expandLine(line string) (string, error) {
	for _, d := range e.directives {
		if strings.Contains(line, d.Marker) {
			text, err := d.Expand(e.ctx, line)
			if err != nil {
				return "", err
			}
			return e.ctx.replaceTokens(text), nil
		}
	}
	return e.ctx.replaceTokens(line) + "\n", nil
}

// splitLines splits generated text into lines without their terminators.
// A trailing newline does not produce an empty trailing line.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// indentOf returns the leading whitespace of a template line, so generated
// statements line up with the marker they replace.
func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
