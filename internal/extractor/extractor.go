// Package extractor pulls single still frames out of video files.
package extractor

import (
	"context"
	"errors"
)

// ErrFFmpegNotFound is returned when the ffmpeg binary cannot be resolved.
var ErrFFmpegNotFound = errors.New("ffmpeg binary not found")

// FrameExtractor writes one still frame of a video to a JPEG file.
type FrameExtractor interface {
	// ExtractFrame reads inputPath and writes a single JPEG frame to outputPath,
	// overwriting it if present. The directory of outputPath must exist.
	// Cancelling ctx kills the underlying process.
	ExtractFrame(ctx context.Context, inputPath, outputPath string) error
}
