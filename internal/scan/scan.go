package scan

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"strings"

	// Raster formats accepted for uploaded code images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// The two expected failure modes of the pipeline. Everything the user can
// cause by uploading the wrong file maps onto one of these; neither is a
// system error.
var (
	ErrUnreadableFile = errors.New("file is not a readable image")
	ErrNoCodeFound    = errors.New("no code found in image")
)

// Decoded is the outcome of a successful scan.
type Decoded struct {
	// RawText is the symbol payload exactly as decoded.
	RawText string
	// Identifier is the receipt identifier extracted from RawText.
	Identifier string
}

// verifySeparator splits a verification URL from the identifier it carries.
const verifySeparator = "/verify/"

// Scan runs the full pipeline over an uploaded image: decode the bytes
// into a bitmap, rasterize at native size, detect a QR symbol, and extract
// the receipt identifier from its payload. The first failing stage
// short-circuits with ErrUnreadableFile or ErrNoCodeFound.
func Scan(r io.Reader) (Decoded, error) {
	img, err := load(r)
	if err != nil {
		return Decoded{}, err
	}

	text, err := decode(rasterize(img))
	if err != nil {
		return Decoded{}, err
	}

	return Decoded{
		RawText:    text,
		Identifier: ExtractIdentifier(text),
	}, nil
}

// ScanFile is Scan over a file on disk. A file that cannot be opened is
// reported the same way as one that cannot be decoded.
func ScanFile(path string) (Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %s", ErrUnreadableFile, path)
	}
	defer f.Close()

	return Scan(f)
}

// ExtractIdentifier pulls the receipt identifier out of a decoded payload.
// A payload containing "/verify/" is treated as a verification URL and
// everything after the first occurrence is the identifier; any other
// payload is the identifier verbatim.
func ExtractIdentifier(payload string) string {
	if _, after, found := strings.Cut(payload, verifySeparator); found {
		return after
	}

	return payload
}

func load(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	return img, nil
}

// rasterize draws the image onto an RGBA buffer of its native size, so the
// detector always sees plain pixel samples regardless of source format.
func rasterize(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	buf := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(buf, buf.Bounds(), img, bounds.Min, draw.Src)

	return buf
}

// decode runs the QR detector over the pixel buffer. The detector is a
// black box that either finds a symbol and yields its text or doesn't;
// every detector-side failure is reported as ErrNoCodeFound.
func decode(buf *image.RGBA) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(buf)
	if err != nil {
		return "", ErrNoCodeFound
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", ErrNoCodeFound
	}

	return result.GetText(), nil
}
