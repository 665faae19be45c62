// Package session holds the browse-state machine behind the terminal UI.
//
// Session owns the navigation state (current source, view mode,
// active bucket, selected item, search filter) and derives what the
// presentation layer renders: the display
// list, the selected index and the viewport start offset. It performs no
// drawing and no I/O, which keeps every transition unit-testable without a
// terminal.
//
//	sess := session.New(cfg, cache)
//	sess.ToggleGroup(session.ViewByRegion)
//	sess.Search("mario")
//	list := sess.DisplayList()
//	sel := sess.SelectedIndex()
//	start := sess.ViewportStart(visibleRows)
package session
