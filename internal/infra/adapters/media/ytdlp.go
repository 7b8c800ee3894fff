// Package media fetches source audio with yt-dlp.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"

	"clipvault/internal/domain"
	"clipvault/internal/domain/ports/adapter"
)

var _ adapter.MediaFetcher = (*YtdlpFetcher)(nil)

// YtdlpFetcher shells out to yt-dlp to extract an audio track into the
// work directory. Any extraction failure (unreachable, removed, region
// locked) surfaces as domain.ErrFetchFailed with yt-dlp's stderr tail.
type YtdlpFetcher struct {
	binPath string
	workDir string
}

func NewYtdlpFetcher(binPath, workDir string) *YtdlpFetcher {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &YtdlpFetcher{binPath: binPath, workDir: workDir}
}

func (f *YtdlpFetcher) Fetch(ctx context.Context, sourceURL string) (string, error) {
	out := filepath.Join(f.workDir, uuid.NewString()+".m4a")
	cmd := exec.CommandContext(ctx, f.binPath,
		"--no-playlist",
		"-x", "--audio-format", "m4a",
		"-o", out,
		sourceURL,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("%w: yt-dlp: %v: %s", domain.ErrFetchFailed, err, tail(stderr.String(), 300))
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("%w: yt-dlp produced no output file", domain.ErrFetchFailed)
	}
	return out, nil
}

func (f *YtdlpFetcher) Cleanup(audioPath string) {
	if audioPath != "" {
		_ = os.Remove(audioPath)
	}
}

// tail keeps the last n bytes of s, then skips forward past any partial
// rune so the result is valid UTF-8.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[len(s)-n:]
	for len(s) > 0 && !utf8.RuneStart(s[0]) {
		s = s[1:]
	}
	return s
}
