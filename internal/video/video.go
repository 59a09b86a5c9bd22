package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// Seconds returns the duration as playback seconds.
func (i *Info) Seconds() float64 {
	return i.Duration.Seconds()
}

// defines interface for video inspection
type Processor interface {
	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)
}

// default probe timeout when ctx carries no deadline
const probeTimeout = 30 * time.Second

// default implementation using ffprobe through ffmpeg-go
type DefaultProcessor struct {
	ffprobePath string
}

// NewProcessor uses the ffprobe at ffprobePath, or the one on PATH when
// empty.
func NewProcessor(ffprobePath string) *DefaultProcessor {
	return &DefaultProcessor{ffprobePath: ffprobePath}
}

// ffmpeg-go runs "ffprobe" from PATH
var pathOnce sync.Once

func (p *DefaultProcessor) usePath() {
	if p.ffprobePath == "" {
		return
	}
	pathOnce.Do(func() {
		dir := filepath.Dir(p.ffprobePath)
		current := os.Getenv("PATH")
		for _, entry := range filepath.SplitList(current) {
			if entry == dir {
				return
			}
		}
		_ = os.Setenv("PATH", dir+string(os.PathListSeparator)+current)
	})
}

// retrieves video file information
func (p *DefaultProcessor) GetInfo(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}
	p.usePath()

	timeout := probeTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, ctx.Err()
		}
	}

	out, err := ffmpeg.ProbeWithTimeout(videoPath, timeout, ffmpeg.KwArgs{})
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := ParseProbe([]byte(out))
	if err != nil {
		return nil, err
	}
	info.Path = videoPath
	return info, nil
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	Duration     string `json:"duration"`
}

// ParseProbe extracts Info from ffprobe's JSON output.
func ParseProbe(data []byte) (*Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	seconds := parseSeconds(out.Format.Duration)

	videoFound := false
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if videoFound {
				continue
			}
			videoFound = true
			info.Codec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FrameRate = parseRate(s.AvgFrameRate)
			if info.FrameRate == 0 {
				info.FrameRate = parseRate(s.RFrameRate)
			}
			if seconds == 0 {
				seconds = parseSeconds(s.Duration)
			}
		case "audio":
			info.HasAudio = true
			if seconds == 0 {
				seconds = parseSeconds(s.Duration)
			}
		}
	}

	if !videoFound && !info.HasAudio {
		return nil, fmt.Errorf("no audio or video streams found")
	}

	info.Duration = time.Duration(seconds * float64(time.Second))
	return info, nil
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parses rationals like 30000/1001
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseSeconds(s)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
