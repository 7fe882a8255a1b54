// Package gource turns cloned repositories into a single rendered video.
//
// The work happens in three stages. Per-repository custom logs come from
// `gource --output-custom-log`, with file paths rewritten under a
// per-repository root so the merged tree shows one directory per project.
// The per-repository logs are then combined and stably sorted by their
// leading Unix timestamp into one chronological log. Finally gource renders
// that log to raw PPM frames on stdout, piped straight into ffmpeg for
// encoding.
//
// Log generation is incremental when a HeadStore is attached: repositories
// whose HEAD commit is unchanged since the last recorded generation keep
// their existing log file.
package gource
