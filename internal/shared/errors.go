package shared

import "fmt"

var (
	// Configuration errors (fatal before a run starts)
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrToolMissing     = fmt.Errorf("required external tool not found")

	// Input errors (per-row, never fatal to a run)
	ErrInvalidRow = fmt.Errorf("row is missing required fields")

	// Per-track pipeline errors (contained within one job)
	ErrNoResults     = fmt.Errorf("no search results")
	ErrResolveFailed = fmt.Errorf("audio resolve failed")
	ErrConvertFailed = fmt.Errorf("conversion failed")
	ErrEmbedFailed   = fmt.Errorf("metadata embed failed")

	// Run control
	ErrCancelled = fmt.Errorf("run cancelled")
)
