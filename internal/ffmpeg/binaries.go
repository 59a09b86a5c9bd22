package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	EnvFFmpegPath  = "LYRICSYNC_FFMPEG_PATH"
	EnvFFprobePath = "LYRICSYNC_FFPROBE_PATH"

	releaseVersion = "6.1"
)

var ErrNotFound = errors.New("ffmpeg binaries not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure locates ffmpeg and ffprobe once per process: explicit env
// overrides first, then PATH, then a previous install in the user cache,
// then a fresh download into that cache.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = ensure()
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func ensure() (BinaryPaths, error) {
	paths, ok := Lookup(os.Getenv, exec.LookPath, CacheDir())
	if ok {
		return paths, nil
	}

	dir := CacheDir()
	if err := install(dir); err != nil {
		return BinaryPaths{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	paths = cached(dir)
	if !usable(paths.FFmpeg) || !usable(paths.FFprobe) {
		return BinaryPaths{}, fmt.Errorf("%w after install in %s", ErrNotFound, dir)
	}
	return paths, nil
}

// Lookup resolves both binaries without touching the network. Each
// binary is resolved independently, so an env override for one can
// combine with PATH for the other.
func Lookup(
	getenv func(string) string,
	lookPath func(string) (string, error),
	cacheDir string,
) (BinaryPaths, bool) {
	inCache := cached(cacheDir)

	resolve := func(envKey, name, cachedPath string) string {
		if p := strings.TrimSpace(getenv(envKey)); p != "" {
			return p
		}
		if p, err := lookPath(name); err == nil {
			return p
		}
		if usable(cachedPath) {
			return cachedPath
		}
		return ""
	}

	paths := BinaryPaths{
		FFmpeg:  resolve(EnvFFmpegPath, "ffmpeg", inCache.FFmpeg),
		FFprobe: resolve(EnvFFprobePath, "ffprobe", inCache.FFprobe),
	}
	return paths, paths.FFmpeg != "" && paths.FFprobe != ""
}

// CacheDir is the per-user directory downloaded binaries live in.
func CacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "lyricsync", "ffmpeg", releaseVersion, runtime.GOOS, runtime.GOARCH)
}

func cached(dir string) BinaryPaths {
	suffix := executableSuffix()
	return BinaryPaths{
		FFmpeg:  filepath.Join(dir, "ffmpeg"+suffix),
		FFprobe: filepath.Join(dir, "ffprobe"+suffix),
	}
}

// an interrupted extraction can leave an empty file behind
func usable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
