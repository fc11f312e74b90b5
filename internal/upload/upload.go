// Package upload streams multipart file fields to a temporary directory so they
// can be handed to the media store by path.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

const defaultMaxBytes int64 = 100 << 20

var allowedTypes = map[string]string{
	"video/mp4":  ".mp4",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

var allowedExts = map[string]string{
	".mp4":  "video/mp4",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Config controls where files are buffered and how large a request may be.
type Config struct {
	TempDir  string
	MaxBytes int64
}

// ConfigFromEnv reads UPLOAD_TEMP_DIR (default ./public/temp) and UPLOAD_MAX_BYTES (default 100 MiB).
func ConfigFromEnv() Config {
	c := Config{TempDir: os.Getenv("UPLOAD_TEMP_DIR"), MaxBytes: defaultMaxBytes}
	if c.TempDir == "" {
		c.TempDir = "./public/temp"
	}
	if v, err := strconv.ParseInt(os.Getenv("UPLOAD_MAX_BYTES"), 10, 64); err == nil && v > 0 {
		c.MaxBytes = v
	}
	return c
}

// File is one buffered file field.
type File struct {
	Path         string
	OriginalName string
	ContentType  string
	Size         int64
}

// Form is the parsed multipart body. Call Cleanup once the files were consumed.
type Form struct {
	values map[string]string
	files  map[string]*File
	logger *zap.SugaredLogger
}

// Value returns the trimmed text field name.
func (f *Form) Value(name string) string { return f.values[name] }

// File returns the buffered file for field name.
func (f *Form) File(name string) (*File, bool) {
	file, ok := f.files[name]
	return file, ok
}

// Cleanup removes buffered files that are still on disk.
func (f *Form) Cleanup() {
	for _, file := range f.files {
		if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.logger.Warnw("remove temp upload", "path", file.Path, "err", err)
		}
	}
}

// Buffer parses multipart requests into temp files.
type Buffer struct {
	cfg    Config
	logger *zap.SugaredLogger
}

func NewBuffer(cfg Config, logger *zap.SugaredLogger) *Buffer {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Buffer{cfg: cfg, logger: logger}
}

// Parse reads the whole multipart body. Only the first file per field name is
// kept. Any failure removes what was already written.
func (b *Buffer) Parse(w http.ResponseWriter, r *http.Request) (*Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, b.cfg.MaxBytes)
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, apperr.BadRequest("invalid multipart payload")
	}
	if err := os.MkdirAll(b.cfg.TempDir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to prepare upload directory", err)
	}
	form := &Form{values: map[string]string{}, files: map[string]*File{}, logger: b.logger}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			form.Cleanup()
			return nil, readError(err)
		}
		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}
		if part.FileName() == "" {
			payload, err := io.ReadAll(part)
			_ = part.Close()
			if err != nil {
				form.Cleanup()
				return nil, readError(err)
			}
			form.values[name] = strings.TrimSpace(string(payload))
			continue
		}
		if _, seen := form.files[name]; seen {
			_ = part.Close()
			continue
		}
		file, err := b.save(part)
		if err != nil {
			form.Cleanup()
			return nil, err
		}
		form.files[name] = file
	}
	return form, nil
}

func (b *Buffer) save(part *multipart.Part) (*File, error) {
	defer part.Close()
	original := filepath.Base(part.FileName())
	contentType, ext, ok := detectType(part.Header.Get("Content-Type"), original)
	if !ok {
		return nil, apperr.BadRequest(fmt.Sprintf("unsupported file type for %s", part.FormName()))
	}
	stem := strings.TrimSuffix(original, filepath.Ext(original))
	path := filepath.Join(b.cfg.TempDir, utilities.NewKSUID()+"-"+sanitize(stem)+ext)
	out, err := os.Create(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to buffer upload", err)
	}
	written, err := io.Copy(out, part)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, readError(err)
	}
	b.logger.Debugw("upload buffered", "field", part.FormName(), "path", path, "size", written)
	return &File{Path: path, OriginalName: original, ContentType: contentType, Size: written}, nil
}

func detectType(header, name string) (string, string, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
	if ext, ok := allowedTypes[ct]; ok {
		return ct, ext, true
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := allowedExts[ext]; ok {
		return ct, allowedTypes[ct], true
	}
	return "", "", false
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}

func readError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.BadRequest("file too large")
	}
	return apperr.BadRequest("invalid multipart payload")
}
