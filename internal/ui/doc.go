// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one pipeline run:
//  1. [RunView] : spinner and phase checklist while the engine trains
//  2. [ResultView] : ranked recommendations in a filterable list
//  3. [ReportView] : held-out evaluation, feature weights and table counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the PipelineEngine, which runs in its own goroutine and
// hands its result back on a second channel once it returns.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
