// Package download streams a selected record to a local file with live
// telemetry.
//
// # State machine
//
// Each attempt moves Idle → Connecting → Streaming → Completed or Failed.
// On failure the partial file is left on disk, so the external strategy can
// resume it later, and the error text is captured for display.
//
// # Strategies
//
// StrategyStream copies the HTTP body to disk in fixed-size chunks,
// updating telemetry after every chunk. StrategyExternal runs aria2c with
// resume enabled and derives telemetry by polling the destination file
// size and tailing the subprocess output; when aria2c is not installed it
// silently falls back to streaming.
//
// # Usage
//
//	engine := download.NewEngine(httpx.NewClient())
//	go func() {
//	    final := engine.Download(ctx, rec, destDir, download.StrategyStream)
//	    // final.State is StateCompleted or StateFailed
//	}()
//	// meanwhile, poll engine.Snapshot() for progress
//
// Both strategies handle unknown total sizes (Progress.Total is -1, the UI
// shows an indeterminate animation) and zero-byte files.
package download
