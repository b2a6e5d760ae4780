package storage

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

const webpQuality = 80

// Limits bound an upload before it is decoded. MaxPixels is checked
// against the size the header declares, so a tiny file claiming a huge
// canvas is refused without allocating it.
type Limits struct {
	MaxSide   int
	MaxBytes  int64
	MaxPixels int
}

// ToWebP decodes a jpeg/png/webp upload, shrinks it so that its longest
// side is at most MaxSide pixels and re-encodes it as webp.
func ToWebP(r io.Reader, lim Limits) ([]byte, error) {
	raw, err := readLimited(r, lim.MaxBytes)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, httperr.ErrBusiness("invalid_image")
	}
	if lim.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(lim.MaxPixels) {
		return nil, httperr.ErrBusiness("image_too_large")
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_image")
	}

	img := Fit(src, lim.MaxSide)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, httperr.ErrBusiness("image_too_large")
	}
	return raw, nil
}

// Fit returns src scaled down to fit a maxSide square, keeping the aspect
// ratio. Smaller images are returned as they are.
func Fit(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return src
	}

	if w >= h {
		h = h * maxSide / w
		w = maxSide
	} else {
		w = w * maxSide / h
		h = maxSide
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
