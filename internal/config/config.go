package config

import "os"

type Config struct {
	ServerPort    string
	DataDir       string // file snapshot directory
	UploadDir     string
	PublicBaseURL string // absolute base for upload URLs; request host if empty
	DatabaseURL   string // when set, snapshots go to Postgres instead of files
}

func Load() Config {
	return Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DataDir:       getEnv("DATA_DIR", "data"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
	}
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
