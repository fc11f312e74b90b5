package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
)

type part struct {
	field, filename, contentType, body string
}

func multipartRequest(t *testing.T, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestParseBuffersFiles(t *testing.T) {
	b := NewBuffer(Config{TempDir: t.TempDir()}, nil)
	r := multipartRequest(t, map[string]string{"title": "  Hello "},
		part{"videoFile", "my clip.mp4", "video/mp4", "0123"},
		part{"thumbnail", "thumb.PNG", "application/octet-stream", "png"},
	)

	form, err := b.Parse(httptest.NewRecorder(), r)
	require.NoError(t, err)
	assert.Equal(t, "Hello", form.Value("title"))

	video, ok := form.File("videoFile")
	require.True(t, ok)
	assert.Equal(t, int64(4), video.Size)
	assert.Equal(t, "video/mp4", video.ContentType)
	assert.True(t, strings.HasSuffix(video.Path, "-my_clip.mp4"))

	thumb, ok := form.File("thumbnail")
	require.True(t, ok)
	assert.Equal(t, "image/png", thumb.ContentType)

	form.Cleanup()
	_, err = os.Stat(video.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	b := NewBuffer(Config{TempDir: dir}, nil)
	r := multipartRequest(t, nil,
		part{"avatar", "a.png", "image/png", "ok"},
		part{"coverImage", "evil.exe", "application/x-msdownload", "MZ"},
	)

	_, err := b.Parse(httptest.NewRecorder(), r)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseTooLarge(t *testing.T) {
	b := NewBuffer(Config{TempDir: t.TempDir(), MaxBytes: 512}, nil)
	r := multipartRequest(t, nil, part{"avatar", "a.png", "image/png", strings.Repeat("x", 4096)})

	_, err := b.Parse(httptest.NewRecorder(), r)
	require.Error(t, err)
	assert.Equal(t, "file too large", apperr.MessageOf(err))
}

func TestParseNotMultipart(t *testing.T) {
	b := NewBuffer(Config{TempDir: t.TempDir()}, nil)
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "application/json")
	_, err := b.Parse(httptest.NewRecorder(), r)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}
