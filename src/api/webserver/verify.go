package webserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/factguard/factguard/src/api/models"
	"github.com/factguard/factguard/src/verifier"
)

// historyLimit is how many past runs the history endpoint returns.
const historyLimit = 20

var allowedExt = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true,
	".mkv": true, ".mp3": true, ".wav": true,
}

type Pipeline interface {
	Verify(ctx context.Context, userID uint64, inputName, filePath string) (*verifier.Result, error)
}

type HistoryStore interface {
	RecentByUser(userID uint64, limit int) ([]models.Verification, error)
}

type Verify struct {
	pipeline  Pipeline
	history   HistoryStore
	uploadDir string
	maxBytes  int64
}

func NewVerify(pipeline Pipeline, history HistoryStore, uploadDir string, maxBytes int64) Verify {
	return Verify{pipeline: pipeline, history: history, uploadDir: uploadDir, maxBytes: maxBytes}
}

// File accepts one media upload in the "video" form field, runs the
// verification pipeline and returns the run result. Fatal pipeline errors
// come back as a generic failure; partial results are never returned.
func (v Verify) File(c *gin.Context) {
	userID := c.GetUint64("uid")

	fh, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "no file uploaded"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"err": "only video/audio files are allowed (mp4, avi, mov, mkv, mp3, wav)"})
		return
	}
	if fh.Size > v.maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"err": "file too large"})
		return
	}

	storedPath := filepath.Join(v.uploadDir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(fh, storedPath); err != nil {
		log.Printf("verify: save upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to store upload"})
		return
	}

	res, err := v.pipeline.Verify(c.Request.Context(), userID, fh.Filename, storedPath)
	if err != nil {
		if errors.Is(err, verifier.ErrNoSpeech) {
			c.JSON(http.StatusBadRequest, gin.H{"err": "could not extract any speech from the file"})
			return
		}
		log.Printf("verify: user %d file %s: %v", userID, fh.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "verification failed"})
		return
	}

	c.JSON(http.StatusOK, res)
}

type historyEntry struct {
	ID         uint64            `json:"id"`
	InputType  string            `json:"inputType"`
	Input      string            `json:"input"`
	Transcript string            `json:"transcript"`
	Claims     []string          `json:"claims"`
	Score      int               `json:"score"`
	Details    []verifier.Detail `json:"details"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func (v Verify) History(c *gin.Context) {
	userID := c.GetUint64("uid")

	recs, err := v.history.RecentByUser(userID, historyLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to load history"})
		return
	}

	out := make([]historyEntry, 0, len(recs))
	for _, r := range recs {
		e := historyEntry{
			ID:         r.ID,
			InputType:  r.InputType,
			Input:      r.Input,
			Transcript: r.Transcript,
			Claims:     r.Claims,
			Score:      r.Score,
			Details:    make([]verifier.Detail, 0, len(r.Details)),
			CreatedAt:  r.CreatedAt,
		}
		for _, d := range r.Details {
			e.Details = append(e.Details, verifier.Detail{Claim: d.Claim, Score: d.Score, Snippets: d.Snippets})
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, out)
}
