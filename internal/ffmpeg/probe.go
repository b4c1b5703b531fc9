package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// GetVideoInfo extracts width, height, and framerate from a video file.
func GetVideoInfo(ctx context.Context, videoPath string) (width, height int, framerate float64, err error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate",
		"-of", "json",
		videoPath,
	}

	cmd := exec.CommandContext(ctx, "ffprobe", args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ffprobe error: %w", err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (width, height int, framerate float64, err error) {
	var data struct {
		Streams []struct {
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			AvgFrameRate string `json:"avg_frame_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &data); err != nil {
		return 0, 0, 0, fmt.Errorf("error parsing ffprobe output: %w", err)
	}
	if len(data.Streams) == 0 {
		return 0, 0, 0, fmt.Errorf("no video streams found")
	}

	s := data.Streams[0]
	framerate, err = parseFrameRate(s.AvgFrameRate)
	if err != nil {
		return s.Width, s.Height, 0, err
	}
	return s.Width, s.Height, framerate, nil
}

// parseFrameRate handles "30" and rational forms like "24000/1001".
func parseFrameRate(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, fmt.Errorf("invalid framerate format %q", s)
		}
		return n / d, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid framerate: %w", err)
	}
	return f, nil
}

// ParseTimeString converts "SS", "SS.sss" or "HH:MM:SS" to seconds.
func ParseTimeString(timeStr string) (float64, error) {
	if seconds, err := strconv.ParseFloat(timeStr, 64); err == nil {
		return seconds, nil
	}

	parts := strings.Split(timeStr, ":")
	if len(parts) == 3 {
		h, errH := strconv.ParseFloat(parts[0], 64)
		m, errM := strconv.ParseFloat(parts[1], 64)
		s, errS := strconv.ParseFloat(parts[2], 64)

		if errH == nil && errM == nil && errS == nil {
			return h*3600 + m*60 + s, nil
		}
	}

	return 0, fmt.Errorf("invalid time format: %s", timeStr)
}
