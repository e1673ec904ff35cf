package audiolevel

import (
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// decodeSampleRate keeps decoded windows small; presence detection does not
// need full fidelity.
const decodeSampleRate = 8000

// ffmpegDecode extracts one window of mono PCM through ffmpeg.
func (d *Detector) ffmpegDecode(ctx context.Context, path string, offset, duration float64) ([]float64, error) {
	binaryName := strings.TrimSpace(d.settings.FFmpegBinary)
	if binaryName == "" {
		binaryName = "ffmpeg"
	}

	args := []string{
		"-v", "error",
		"-ss", strconv.FormatFloat(offset, 'f', 3, 64),
		"-t", strconv.FormatFloat(duration, 'f', 3, 64),
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(decodeSampleRate),
		"-f", "s16le",
		"-",
	}
	cmd := exec.CommandContext(ctx, binaryName, args...)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		if detail != "" {
			return nil, fmt.Errorf("ffmpeg decode: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("ffmpeg decode: %w", err)
	}

	samples := make([]float64, 0, len(output)/2)
	for i := 0; i+1 < len(output); i += 2 {
		raw := int16(binary.LittleEndian.Uint16(output[i : i+2]))
		samples = append(samples, float64(raw)/32768.0)
	}
	return samples, nil
}
