package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
)

// Thumbnail loads a card image and scales it to width, keeping the aspect ratio.
func Thumbnail(path string, width int) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open card image: %w", err)
	}
	if width <= 0 || width >= img.Bounds().Dx() {
		return img, nil
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos), nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// QRCode renders text, typically the status page URL, as a PNG QR code.
func QRCode(text string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	if _, _, err := image.Decode(bytes.NewReader(png)); err != nil {
		return nil, err
	}
	return png, nil
}
