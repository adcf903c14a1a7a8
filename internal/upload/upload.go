package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Relay accepts one binary asset per request and serves the stored files
// back under /uploads/. It never touches the token store — a token merely
// references the URL this hands out.
type Relay struct {
	dir     string
	baseURL string // optional; request host is used when empty
	log     *zap.Logger
}

func NewRelay(dir, baseURL string, log *zap.Logger) (*Relay, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Relay{dir: dir, baseURL: baseURL, log: log}, nil
}

// Handle stores a single multipart "file" field under a fresh name that
// keeps the original extension, so content-type sniffing and <img>/<video>
// rendering keep working on the other end.
func (u *Relay) Handle(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no file attached"})
		return
	}
	defer file.Close()

	name := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		u.log.Error("create upload file", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failure"})
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		u.log.Error("write upload file", zap.Error(err))
		os.Remove(dst.Name())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failure"})
		return
	}

	url := fmt.Sprintf("%s/uploads/%s", u.base(r), name)
	u.log.Info("asset uploaded", zap.String("name", name), zap.Int64("size", header.Size))
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Serve exposes stored assets with a permissive CORS header. The map draws
// these images onto a canvas pixel buffer, which a cross-origin response
// without the header would taint.
func (u *Relay) Serve() http.Handler {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(u.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		files.ServeHTTP(w, r)
	})
}

func (u *Relay) base(r *http.Request) string {
	if u.baseURL != "" {
		return u.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
