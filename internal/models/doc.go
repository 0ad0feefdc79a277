// Package models defines the domain entities for the CSV-to-MP3 pipeline.
//
// The package contains two categories of types:
//
// 1. Input values parsed from the playlist CSV:
//   - [Track] : One song to fetch, immutable after parsing
//
// 2. Work tracking for the download pipeline:
//   - [Job] : The per-track resolve→convert→embed pipeline instance
//   - [JobStatus] : The job state machine with validated transitions
//   - [ErrorKind] : Classification of terminal job failures
//
// Each Job is owned by exactly one worker for its whole lifetime; status is
// reported outward through events, never shared-mutated across workers.
package models
