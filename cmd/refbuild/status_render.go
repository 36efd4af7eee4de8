package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

type statusStyle struct {
	tag   string
	color string
}

var statusStyles = map[statusKind]statusStyle{
	statusInfo:  {tag: "INFO", color: "\x1b[34m"},
	statusOK:    {tag: "OK", color: "\x1b[32m"},
	statusWarn:  {tag: "WARN", color: "\x1b[33m"},
	statusError: {tag: "ERROR", color: "\x1b[31m"},
}

const (
	colorReset  = "\x1b[0m"
	labelColumn = 24
)

func styleFor(kind statusKind) statusStyle {
	if style, ok := statusStyles[kind]; ok {
		return style
	}
	return statusStyles[statusInfo]
}

// statusLine renders "  label:  [TAG] message".
func statusLine(label string, kind statusKind, message string, paint bool) string {
	style := styleFor(kind)
	var b strings.Builder
	fmt.Fprintf(&b, "  %-*s [%s]", labelColumn, label+":", style.tag)
	if message != "" {
		b.WriteString(" ")
		b.WriteString(message)
	}
	return colorize(b.String(), style.color, paint)
}

// sectionLines renders a section title and a rule of the same width.
func sectionLines(title string, paint bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(heading))
	color := statusStyles[statusInfo].color
	return []string{colorize(heading, color, paint), colorize(rule, color, paint)}
}

func colorize(s, color string, paint bool) string {
	if !paint || color == "" {
		return s
	}
	return color + s + colorReset
}

// isTerminal reports whether w is a terminal, the only case where output is
// coloured.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
