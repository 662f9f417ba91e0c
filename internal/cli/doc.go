// Package cli implements the textkeeper command line: document, version and
// folder management on top of the store, Markdown rendering, file import and
// export, the preview server and an interactive editing shell driven by an
// autosave session.
//
// Listings print as tables by default; -o json and -o yaml switch to
// machine-readable output.
package cli
