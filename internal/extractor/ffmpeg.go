package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// maxStderrBytes bounds how much ffmpeg diagnostic output is kept for errors.
const maxStderrBytes = 2048

// FFmpegConfig holds configuration for the FFmpeg frame extractor.
type FFmpegConfig struct {
	// FFmpegPath is the path to the ffmpeg binary.
	// If empty, "ffmpeg" will be used (assumes it's in PATH).
	FFmpegPath string

	// SeekOffset is the position of the extracted frame, in ffmpeg time syntax.
	// Default: 00:00:01
	SeekOffset string

	// Quality is the JPEG quality scale passed to -q:v (2 is best, 31 worst).
	// Default: 2
	Quality int

	// WaitDelay bounds how long ExtractFrame waits for ffmpeg's output pipes
	// to close after the process is killed on cancellation.
	// Default: 5s
	WaitDelay time.Duration
}

// DefaultFFmpegConfig returns an FFmpegConfig with production-ready defaults.
func DefaultFFmpegConfig() FFmpegConfig {
	return FFmpegConfig{
		FFmpegPath: "ffmpeg",
		SeekOffset: "00:00:01",
		Quality:    2,
		WaitDelay:  5 * time.Second,
	}
}

// FFmpegExtractor implements FrameExtractor using the FFmpeg CLI.
type FFmpegExtractor struct {
	config FFmpegConfig
}

// Compile-time verification that FFmpegExtractor implements FrameExtractor.
var _ FrameExtractor = (*FFmpegExtractor)(nil)

// NewFFmpegExtractor creates a new FFmpeg-based frame extractor.
func NewFFmpegExtractor(cfg FFmpegConfig) *FFmpegExtractor {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	return &FFmpegExtractor{
		config: cfg,
	}
}

// CheckAvailable resolves the configured binary and returns its absolute path.
func (e *FFmpegExtractor) CheckAvailable() (string, error) {
	path, err := exec.LookPath(e.config.FFmpegPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFFmpegNotFound, e.config.FFmpegPath, err)
	}
	return path, nil
}

// ExtractFrame runs ffmpeg as a subprocess and waits for completion.
// The output file must be non-empty for the run to count as a success.
func (e *FFmpegExtractor) ExtractFrame(ctx context.Context, inputPath, outputPath string) error {
	if err := e.validateInput(inputPath); err != nil {
		return err
	}

	if err := e.validateOutputDir(filepath.Dir(outputPath)); err != nil {
		return err
	}

	args := e.buildFFmpegArgs(inputPath, outputPath)

	var stderr bytes.Buffer
	cmd := e.newCommand(ctx, args)
	cmd.Stderr = &limitedWriter{buf: &stderr, limit: maxStderrBytes}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("frame extraction cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg execution failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("ffmpeg produced no output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced an empty frame: %s", outputPath)
	}

	return nil
}

// newCommand builds the ffmpeg invocation. A grandchild holding stderr open
// cannot keep Run blocked for longer than WaitDelay after a kill.
func (e *FFmpegExtractor) newCommand(ctx context.Context, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, e.config.FFmpegPath, args...)
	cmd.Stdout = nil
	cmd.WaitDelay = e.config.WaitDelay
	return cmd
}

// validateInput checks if the input file exists and is readable.
func (e *FFmpegExtractor) validateInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", inputPath)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", inputPath)
	}

	return nil
}

// validateOutputDir checks if the output directory exists.
func (e *FFmpegExtractor) validateOutputDir(outputDir string) error {
	info, err := os.Stat(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", outputDir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", outputDir)
	}

	return nil
}

// buildFFmpegArgs constructs the FFmpeg command arguments.
func (e *FFmpegExtractor) buildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-ss", e.config.SeekOffset,
		"-vframes", "1",
		"-q:v", strconv.Itoa(e.config.Quality),
		"-y", // Overwrite output files without asking
		outputPath,
	}
}

// limitedWriter keeps the first limit bytes and silently drops the rest.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if room := w.limit - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}
