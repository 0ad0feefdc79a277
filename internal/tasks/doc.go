// package tasks implements the concurrent CSV-to-MP3 download pipeline.
//
// The core abstraction is [DownloadEngine], which fans a playlist's tracks
// over a bounded worker pool. Each track runs resolve → convert → embed in
// isolation; one track's failure never affects another. Operations emit
// progress updates via channels for non-blocking status reporting to CLI/UI
// layers.
//
// Cancellation is cooperative and immediate: the run context is inherited by
// every spawned process, so cancelling it kills in-flight downloads and
// conversions rather than waiting for them to finish.
package tasks
