package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"dionysia/internal/jobs"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 24
	statusIndent     = "  "
)

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

func (k statusKind) label() string {
	if style, ok := statusStyles[k]; ok {
		return style.label
	}
	return statusStyles[statusInfo].label
}

// paint wraps text in the kind's color when colorize is set.
func (k statusKind) paint(text string, colorize bool) string {
	style, ok := statusStyles[k]
	if !colorize || !ok {
		return text
	}
	return style.color + text + ansiReset
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + kind.label() + "]"
	if message != "" {
		status += " " + message
	}
	return kind.paint(fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status), colorize)
}

// outcomeKind maps a job action outcome onto a status color.
func outcomeKind(outcome string) statusKind {
	switch outcome {
	case jobs.OutcomeDone:
		return statusOK
	case jobs.OutcomeSkipped:
		return statusWarn
	case jobs.OutcomeFailed:
		return statusError
	default:
		return statusInfo
	}
}

func writeSectionHeader(out io.Writer, title string, colorize bool) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	fmt.Fprintln(out, statusInfo.paint(line, colorize))
	fmt.Fprintln(out, statusInfo.paint(strings.Repeat("-", len(line)), colorize))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
