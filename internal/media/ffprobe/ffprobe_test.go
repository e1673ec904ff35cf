package ffprobe_test

import (
	"testing"

	"upright/internal/media/ffprobe"
)

const samplePayload = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2, "sample_rate": "48000"}
  ],
  "format": {"filename": "clip.mp4", "nb_streams": 2, "duration": "42.500000", "format_name": "mov,mp4"}
}`

func TestParseExtractsStreams(t *testing.T) {
	result, err := ffprobe.Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	video, ok := result.VideoStream()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if video.Width != 1920 || video.Height != 1080 {
		t.Fatalf("video dimensions = %dx%d", video.Width, video.Height)
	}
	if !result.HasAudioStream() {
		t.Fatal("expected an audio stream")
	}
	if got := result.DurationSeconds(); got != 42.5 {
		t.Fatalf("duration = %v", got)
	}
}

func TestParseVideoOnly(t *testing.T) {
	result, err := ffprobe.Parse([]byte(`{"streams":[{"codec_type":"video","width":640,"height":480}],"format":{"duration":"3"}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.HasAudioStream() {
		t.Fatal("unexpected audio stream")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ffprobe.Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDurationUnavailable(t *testing.T) {
	result, err := ffprobe.Parse([]byte(`{"streams":[],"format":{"duration":"n/a"}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := result.DurationSeconds(); got != 0 {
		t.Fatalf("duration = %v, want 0", got)
	}
}
