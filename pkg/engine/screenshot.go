package engine

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"

	"github.com/go-drift/mediakit/pkg/platform"
)

// Supported screenshot output formats.
const (
	FormatPNG  = "image/png"
	FormatJPEG = "image/jpeg"
	FormatBMP  = "image/bmp"
)

// Screenshot captures the current video frame and encodes it in the given
// format. The native side returns the raw RGBA frame; encoding happens on
// the Go side.
func (p *Player) Screenshot(format string) ([]byte, error) {
	handle, err := p.Handle()
	if err != nil {
		return nil, err
	}

	result, err := p.eng.channel.Invoke("screenshot", map[string]any{
		"handle": handle,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}

	img, err := decodeRawFrame(result)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	default:
		return nil, fmt.Errorf("screenshot: unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("screenshot: encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// decodeRawFrame converts the native screenshot payload
// {width, height, data} into an image. The pixel data is base64-encoded
// RGBA in row-major order.
func decodeRawFrame(result any) (*image.RGBA, error) {
	m := platform.ParseMap(result)
	if m == nil {
		return nil, fmt.Errorf("screenshot: unexpected payload %T", result)
	}
	width, okW := platform.ToInt64(m["width"])
	height, okH := platform.ToInt64(m["height"])
	if !okW || !okH || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("screenshot: invalid frame size %vx%v", m["width"], m["height"])
	}

	pixels, err := base64.StdEncoding.DecodeString(platform.ParseString(m["data"]))
	if err != nil {
		return nil, fmt.Errorf("screenshot: decode pixel data: %w", err)
	}
	if int64(len(pixels)) != width*height*4 {
		return nil, fmt.Errorf("screenshot: pixel data length %d does not match %dx%d", len(pixels), width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	copy(img.Pix, pixels)
	return img, nil
}
