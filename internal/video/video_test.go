package video

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"
)

func TestParseProbe(t *testing.T) {
	data := `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
			 "avg_frame_rate": "30000/1001", "r_frame_rate": "30/1"},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"duration": "215.750000"}
	}`

	info, err := ParseProbe([]byte(data))
	if err != nil {
		t.Fatalf("ParseProbe failed: %v", err)
	}

	if info.Codec != "h264" || info.Width != 1920 || info.Height != 1080 {
		t.Errorf("unexpected video stream info: %+v", info)
	}
	if math.Abs(info.FrameRate-29.97) > 0.01 {
		t.Errorf("expected ~29.97 fps, got %v", info.FrameRate)
	}
	if !info.HasAudio {
		t.Error("expected audio")
	}
	if info.Duration != 215750*time.Millisecond {
		t.Errorf("expected 215.75s, got %v", info.Duration)
	}
	if info.Seconds() != 215.75 {
		t.Errorf("expected 215.75, got %v", info.Seconds())
	}
}

func TestParseProbeFallbacks(t *testing.T) {
	data := `{
		"streams": [
			{"codec_type": "audio", "codec_name": "opus", "duration": "12.5"}
		],
		"format": {}
	}`

	info, err := ParseProbe([]byte(data))
	if err != nil {
		t.Fatalf("ParseProbe failed: %v", err)
	}
	if info.Codec != "" || info.Width != 0 {
		t.Errorf("audio-only file should have no video info: %+v", info)
	}
	if info.Duration != 12500*time.Millisecond {
		t.Errorf("expected stream duration 12.5s, got %v", info.Duration)
	}
}

func TestParseProbeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "ffprobe: command not found"},
		{"no streams", `{"streams": [], "format": {"duration": "1.0"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseProbe([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"0/0", 0},
		{"24", 24},
		{"", 0},
		{"x/1", 0},
	}
	for _, tt := range tests {
		if got := parseRate(tt.in); got != tt.want {
			t.Errorf("parseRate(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestGetInfoMissingFile(t *testing.T) {
	p := NewProcessor("")
	_, err := p.GetInfo(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
