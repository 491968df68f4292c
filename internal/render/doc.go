// Package render produces the final transcript artifacts: a Markdown
// document with per-speaker sections and inline translations, and an
// optional PDF rendered through pandoc with CJK font support.
package render
