package khqr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRRasterizer implements orders.Rasterizer with a PNG data URI, ready to
// drop into an <img> tag.
type QRRasterizer struct {
	Size int // pixels, defaults to 320
}

func (r QRRasterizer) RenderDataURI(payload string) (string, error) {
	size := r.Size
	if size <= 0 {
		size = 320
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("rasterize payload: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
