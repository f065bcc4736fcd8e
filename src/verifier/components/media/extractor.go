// Package media strips the video track from an uploaded file and re-encodes
// the audio into a small AAC stream that the transcription API will accept.
package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

type Extractor struct {
	ffmpegBin string
	workDir   string
}

func NewExtractor(ffmpegBin, workDir string) *Extractor {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Extractor{ffmpegBin: ffmpegBin, workDir: workDir}
}

func randomSuffix() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ExtractAudio transcodes inputPath into a temp .m4a file and returns its
// path plus a cleanup func. Cleanup must be called on every exit path; the
// random suffix keeps concurrent requests from clashing on the same name.
func (e *Extractor) ExtractAudio(ctx context.Context, inputPath string) (string, func(), error) {
	suffix, err := randomSuffix()
	if err != nil {
		return "", nil, fmt.Errorf("media: temp name: %w", err)
	}
	outPath := filepath.Join(e.workDir, "temp_"+suffix+".m4a")
	cleanup := func() { _ = os.Remove(outPath) }

	cmd := exec.CommandContext(ctx, e.ffmpegBin,
		"-y", "-i", inputPath, "-vn", "-c:a", "aac", "-b:a", "64k", outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("media: ffmpeg: %w: %s", err, truncate(string(out), 512))
	}

	if st, err := os.Stat(outPath); err != nil || st.Size() == 0 {
		cleanup()
		return "", nil, fmt.Errorf("media: ffmpeg produced no output for %s", filepath.Base(inputPath))
	}
	return outPath, cleanup, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
