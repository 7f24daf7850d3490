package image

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cocktail-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 40), B: uint8(y * 40), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	return buf.Bytes()
}

func serve(status int, body []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
}

func TestFetchPNGPassesThrough(t *testing.T) {
	data := encodePNG(t)
	srv := serve(http.StatusOK, data)
	defer srv.Close()

	svc := NewService(1<<20, time.Second, "")
	dl, err := svc.Fetch(context.Background(), srv.URL+"/img.png")
	require.NoError(t, err)

	assert.Equal(t, data, dl.Data)
	assert.Equal(t, ContentTypePNG, dl.ContentType)
	assert.Equal(t, "cocktail.png", dl.Filename)
	assert.Equal(t, "png", dl.SourceFormat)
	assert.False(t, dl.Converted)
}

func TestFetchConvertsJPEGToPNG(t *testing.T) {
	srv := serve(http.StatusOK, encodeJPEG(t))
	defer srv.Close()

	svc := NewService(1<<20, time.Second, "drink.png")
	dl, err := svc.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.True(t, dl.Converted)
	assert.Equal(t, "jpeg", dl.SourceFormat)
	assert.Equal(t, "drink.png", dl.Filename)

	_, format, err := image.Decode(bytes.NewReader(dl.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

// jpegWithDimensions 改寫 SOF0 標頭，讓小檔案宣告任意尺寸
func jpegWithDimensions(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)), nil))
	data := buf.Bytes()

	i := bytes.Index(data, []byte{0xFF, 0xC0})
	require.GreaterOrEqual(t, i, 0)
	// FFC0 | length(2) | precision(1) | height(2) | width(2)
	data[i+5], data[i+6] = byte(height>>8), byte(height)
	data[i+7], data[i+8] = byte(width>>8), byte(width)
	return data
}

func TestFetchOversizedDimensionsPassThrough(t *testing.T) {
	body := jpegWithDimensions(t, 12000, 12000)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 12000, cfg.Width)

	srv := serve(http.StatusOK, body)
	defer srv.Close()

	dl, err := NewService(1<<20, time.Second, "").Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, dl.Converted)
	assert.Equal(t, "jpeg", dl.SourceFormat)
	assert.Equal(t, body, dl.Data)
}

func TestFetchMaxPixelsOption(t *testing.T) {
	body := encodeJPEG(t)
	srv := serve(http.StatusOK, body)
	defer srv.Close()

	// 4x4 = 16 像素
	dl, err := NewService(1<<20, time.Second, "", WithMaxPixels(8)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, dl.Converted)
	assert.Equal(t, body, dl.Data)

	dl, err = NewService(1<<20, time.Second, "", WithMaxPixels(16)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, dl.Converted)
}

func TestFetchAllowedHosts(t *testing.T) {
	srv := serve(http.StatusOK, encodePNG(t))
	defer srv.Close()

	svc := NewService(1<<20, time.Second, "", WithAllowedHosts([]string{"api.together.ai", " Together.XYZ "}))

	_, err := svc.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidURL)
	status, _, message := common.StatusFromError(err, "Failed to download image")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Image host not allowed", message)

	assert.True(t, svc.hostAllowed("api.together.ai"))
	assert.True(t, svc.hostAllowed("cdn.together.xyz"))
	assert.False(t, svc.hostAllowed("eviltogether.xyz"))
	assert.False(t, svc.hostAllowed("169.254.169.254"))

	open := NewService(1<<20, time.Second, "", WithAllowedHosts(nil))
	dl, err := open.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "png", dl.SourceFormat)
}

func TestFetchUndecodableBodyPassesThrough(t *testing.T) {
	body := []byte("not really an image")
	srv := serve(http.StatusOK, body)
	defer srv.Close()

	dl, err := NewService(1<<20, time.Second, "").Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, dl.Data)
	assert.False(t, dl.Converted)
	assert.Empty(t, dl.SourceFormat)
}

func TestFetchUpstreamFailures(t *testing.T) {
	t.Run("non 2xx", func(t *testing.T) {
		srv := serve(http.StatusNotFound, []byte("missing"))
		defer srv.Close()

		_, err := NewService(1<<20, time.Second, "").Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, common.ErrUpstream)
	})

	t.Run("too large", func(t *testing.T) {
		srv := serve(http.StatusOK, bytes.Repeat([]byte("a"), 64))
		defer srv.Close()

		_, err := NewService(16, time.Second, "").Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, common.ErrUpstream)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := serve(http.StatusOK, nil)
		addr := srv.URL
		srv.Close()

		_, err := NewService(1<<20, time.Second, "").Fetch(context.Background(), addr)
		assert.ErrorIs(t, err, common.ErrUpstream)
	})
}

func TestValidateURL(t *testing.T) {
	invalid := []string{"", "   ", "not a url", "/relative/path.png", "ftp://example.com/a.png", "file:///etc/passwd", "https://"}
	for _, raw := range invalid {
		_, err := ValidateURL(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)

		status, _, _ := common.StatusFromError(err, "Failed to download image")
		assert.Equal(t, http.StatusBadRequest, status, raw)
	}

	u, err := ValidateURL("https://api.together.ai/shrt/abc.png")
	require.NoError(t, err)
	assert.Equal(t, "api.together.ai", u.Host)
}
