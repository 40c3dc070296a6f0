// Package report renders analysis results.
//
// Three formats are available:
//   - SimpleWriter: coloured text for the terminal
//   - JSONWriter: structured JSON, optionally wrapped with the tool version
//   - MarkdownWriter: tables, alerts and a pie chart of indicator contributions
//
// Every writer renders both single-image reports and lists of stored
// analysis records, so the CLI can switch formats with one flag.
package report
