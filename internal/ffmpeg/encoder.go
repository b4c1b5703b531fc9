package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"kclass/internal/monitoring"
)

// EncoderOptions describes the rgb24 stream written to ffmpeg's stdin.
type EncoderOptions struct {
	Output string
	Width  int
	Height int
	FPS    int
	// Codec defaults to libx264.
	Codec string
}

// EncoderArgs returns the ffmpeg arguments for opts.
func EncoderArgs(opts EncoderOptions) []string {
	codec := opts.Codec
	if codec == "" {
		codec = "libx264"
	}
	return []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-i", "pipe:0",
		"-an",
		"-c:v", codec,
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		opts.Output,
	}
}

// CreateEncoderProcess starts ffmpeg reading raw frames from the returned
// writer. stderr is captured in the returned buffer.
func CreateEncoderProcess(ctx context.Context, opts EncoderOptions) (*exec.Cmd, io.WriteCloser, *bytes.Buffer, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, nil, nil, fmt.Errorf("ffmpeg not found in $PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", EncoderArgs(opts)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	monitoring.Logf("FFmpeg command: %s", strings.Join(cmd.Args, " "))
	return cmd, stdin, stderr, nil
}

// Encoder feeds frames to a running ffmpeg process.
type Encoder struct {
	opts      EncoderOptions
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    *bytes.Buffer
	frameSize int
	frames    int
}

// NewEncoder starts ffmpeg for opts.
func NewEncoder(ctx context.Context, opts EncoderOptions) (*Encoder, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid encoder geometry %dx%d@%d", opts.Width, opts.Height, opts.FPS)
	}
	cmd, stdin, stderr, err := CreateEncoderProcess(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		opts:      opts,
		cmd:       cmd,
		stdin:     stdin,
		stderr:    stderr,
		frameSize: opts.Width * opts.Height * 3,
	}, nil
}

// WriteFrame writes one rgb24 frame.
func (e *Encoder) WriteFrame(frame []byte) error {
	if len(frame) != e.frameSize {
		return fmt.Errorf("frame is %d bytes, want %d", len(frame), e.frameSize)
	}
	if _, err := e.stdin.Write(frame); err != nil {
		return fmt.Errorf("error writing frame %d: %w", e.frames, err)
	}
	e.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (e *Encoder) Frames() int {
	return e.frames
}

// Close flushes stdin and waits for ffmpeg to finish.
func (e *Encoder) Close() error {
	if err := e.stdin.Close(); err != nil {
		return fmt.Errorf("error closing ffmpeg stdin: %w", err)
	}
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg error: %v - stderr: %s", err, e.stderr.String())
	}
	return nil
}
