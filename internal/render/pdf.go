package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// commandOutput runs external commands; swapped in tests.
var commandOutput = func(cmd *exec.Cmd) ([]byte, error) {
	return cmd.CombinedOutput()
}

// PDFOptions controls pandoc's LaTeX rendering.
type PDFOptions struct {
	FontFamily string
	FontSize   int
}

const latexHeaderTemplate = `\usepackage{xeCJK}
\setCJKmainfont{%s}
\usepackage{fancyhdr}
\usepackage{geometry}
\geometry{
    a4paper,
    left=2.5cm,
    right=2.5cm,
    top=3cm,
    bottom=3cm
}
\pagestyle{fancy}
\fancyhf{}
\fancyhead[L]{\small Transcript}
\fancyfoot[C]{\thepage}
\renewcommand{\headrulewidth}{0.4pt}
\usepackage{hyperref}
\hypersetup{
    colorlinks=true,
    linkcolor=blue,
    urlcolor=blue
}
`

// GeneratePDF converts a Markdown transcript to PDF through pandoc with the
// xelatex engine. A temporary LaTeX header enables the xeCJK package so
// Chinese text renders with the configured font.
func GeneratePDF(ctx context.Context, pandocBinary, mdPath, pdfPath string, opts PDFOptions) error {
	pandocBinary = strings.TrimSpace(pandocBinary)
	if pandocBinary == "" {
		pandocBinary = "pandoc"
	}
	if _, err := os.Stat(mdPath); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}

	font := opts.FontFamily
	if font == "" {
		font = "Noto Sans CJK TC"
	}
	fontSize := opts.FontSize
	if fontSize <= 0 {
		fontSize = 12
	}

	header, err := os.CreateTemp("", "scribe-header-*.tex")
	if err != nil {
		return fmt.Errorf("pdf: create header file: %w", err)
	}
	headerPath := header.Name()
	defer os.Remove(headerPath)

	if _, err := fmt.Fprintf(header, latexHeaderTemplate, font); err != nil {
		_ = header.Close()
		return fmt.Errorf("pdf: write header: %w", err)
	}
	if err := header.Close(); err != nil {
		return fmt.Errorf("pdf: close header: %w", err)
	}

	args := []string{
		mdPath,
		"-o", pdfPath,
		"--pdf-engine=xelatex",
		"--include-in-header=" + headerPath,
		fmt.Sprintf("--variable=fontsize:%dpt", fontSize),
		"--variable=documentclass:article",
		"--variable=papersize:a4",
		"--toc",
		"--number-sections",
	}
	cmd := exec.CommandContext(ctx, pandocBinary, args...) //nolint:gosec
	if output, err := commandOutput(cmd); err != nil {
		return fmt.Errorf("pandoc: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
