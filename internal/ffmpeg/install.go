package ffmpeg

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

// downloads are large; a slow mirror should not hang forever
var httpClient = &http.Client{Timeout: 5 * time.Minute}

func install(dir string) error {
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		asset, err := assetName(name, runtime.GOOS, runtime.GOARCH)
		if err != nil {
			return err
		}
		if err := fetch(asset, name, dir); err != nil {
			return err
		}
	}
	return nil
}

// ffbinaries ships one zip per binary and platform
func assetName(binary, goos, goarch string) (string, error) {
	var platform string
	switch {
	case goos == "linux" && goarch == "amd64":
		platform = "linux-64"
	case goos == "linux" && goarch == "arm64":
		platform = "linux-arm-64"
	case goos == "darwin" && goarch == "amd64":
		platform = "macos-64"
	case goos == "windows" && goarch == "amd64":
		platform = "win-64"
	default:
		return "", fmt.Errorf("no prebuilt %s for %s/%s", binary, goos, goarch)
	}
	return fmt.Sprintf("%s-%s-%s.zip", binary, releaseVersion, platform), nil
}

func fetch(asset, binary, dir string) error {
	url := fmt.Sprintf("%s/v%s/%s", releaseBaseURL, releaseVersion, asset)
	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", asset, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", asset, resp.Status)
	}

	// zip needs random access
	tmp, err := os.CreateTemp("", "lyricsync-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	return extract(tmp, size, binary, dir)
}

func extract(r io.ReaderAt, size int64, binary, dir string) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	want := binary + executableSuffix()
	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Base(f.Name), want) {
			continue
		}
		return extractFile(f, filepath.Join(dir, want))
	}
	return fmt.Errorf("archive has no %s", want)
}

func extractFile(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return out.Close()
}
