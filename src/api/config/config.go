package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN  string
	RedisURL  string
	JWTSecret string
	Port      string

	GroqAPIKey  string
	GroqBaseURL string
	AudioModel  string
	ChatModel   string

	SerpAPIKey  string
	SerpBaseURL string

	UploadDir string
	FFmpegBin string

	// MaxClaims bounds how many extracted claims are verified per run;
	// each claim costs one search call and one completion call.
	MaxClaims      int
	MaxUploadBytes int64
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	maxClaims, _ := strconv.Atoi(getenv("MAX_CLAIMS", "5"))
	maxUpload, _ := strconv.ParseInt(getenv("MAX_UPLOAD_BYTES", strconv.FormatInt(500<<20, 10)), 10, 64)
	return Config{
		MySQLDSN:       getenv("MYSQL_DSN", "factguard:factguard@tcp(localhost:3306)/factguard?parseTime=true"),
		RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:      getenv("JWT_SECRET", ""),
		Port:           getenv("PORT", "5000"),
		GroqAPIKey:     getenv("GROQ_API_KEY", ""),
		GroqBaseURL:    getenv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		AudioModel:     getenv("AUDIO_MODEL", "whisper-large-v3"),
		ChatModel:      getenv("CHAT_MODEL", "llama-3.1-8b-instant"),
		SerpAPIKey:     getenv("SERPAPI_KEY", ""),
		SerpBaseURL:    getenv("SERPAPI_URL", "https://serpapi.com"),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		FFmpegBin:      getenv("FFMPEG_BIN", "ffmpeg"),
		MaxClaims:      maxClaims,
		MaxUploadBytes: maxUpload,
	}
}
