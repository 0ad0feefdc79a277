// Package services wraps the external tools and libraries the download
// pipeline depends on.
//
// Three capabilities are defined as interfaces so the pipeline can be tested
// without spawning processes:
//   - [Resolver] : finds and fetches a raw audio file for a track (yt-dlp)
//   - [Converter] : transcodes raw audio to MP3 (ffmpeg)
//   - [Embedder] : writes ID3v2 tags into a finished MP3 (id3v2 library)
//
// Process execution goes through the commandRunner seam; production code uses
// [os/exec] while tests substitute a fake.
package services
