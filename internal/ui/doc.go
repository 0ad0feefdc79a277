// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for downloading a playlist CSV:
//  1. [TrackListView] : Preview the parsed tracks
//  2. [ConfirmView] : Confirm the download run
//  3. [DownloadView] : Monitor real-time progress updates
//  4. [ResultView] : Display the completed/failed aggregate and failures
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Progress updates flow through a channel from the DownloadEngine, providing
// non-blocking status reporting during downloads.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
