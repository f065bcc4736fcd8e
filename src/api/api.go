package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"github.com/factguard/factguard/src/api/config"
	"github.com/factguard/factguard/src/api/data"
	"github.com/factguard/factguard/src/api/models"
	"github.com/factguard/factguard/src/api/webserver"
	"github.com/factguard/factguard/src/verifier"
	"github.com/factguard/factguard/src/verifier/components/claims"
	"github.com/factguard/factguard/src/verifier/components/media"
	"github.com/factguard/factguard/src/verifier/components/search"
	"github.com/factguard/factguard/src/verifier/components/transcribe"
)

var allModels = []interface{}{
	&models.User{}, &models.Verification{}, &models.VerificationClaim{},
}

func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

// newGroqClient builds the one provider handle shared by the transcription
// and completion components. Groq speaks the OpenAI wire format, so the
// stock client with a swapped base URL is all it takes.
func newGroqClient(cfg config.Config) *openai.Client {
	cc := openai.DefaultConfig(cfg.GroqAPIKey)
	cc.BaseURL = cfg.GroqBaseURL
	return openai.NewClientWithConfig(cc)
}

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)
	store := data.NewStore(db)

	rdb := data.MustRedis(cfg.RedisURL)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	groq := newGroqClient(cfg)
	pipeline := verifier.New(
		media.NewExtractor(cfg.FFmpegBin, cfg.UploadDir),
		transcribe.New(groq, cfg.AudioModel),
		claims.NewExtractor(groq, cfg.ChatModel),
		claims.NewScorer(groq, cfg.ChatModel),
		search.NewClient(cfg.SerpAPIKey, cfg.SerpBaseURL),
		data.NewEvidenceCache(rdb),
		store,
		cfg.MaxClaims,
	)

	router := webserver.New(cfg, webserver.Stores{Users: store, History: store}, pipeline)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Minute, // large uploads
		WriteTimeout: 10 * time.Minute, // pipeline blocks on provider calls
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("FactGuard API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
