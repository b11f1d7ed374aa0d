// Package qr renders the scannable verification code shown after a
// receipt is generated. The payload is the verification page URL, so the
// same code works for a camera scan and for the in-app image upload.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// VerificationURL builds the payload encoded into the code:
// {origin}/verify/{receiptID}.
func VerificationURL(origin, receiptID string) string {
	return fmt.Sprintf("%s/verify/%s", strings.TrimRight(origin, "/"), receiptID)
}

// Render returns the code as a terminal-printable block string.
func Render(payload string) (string, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encoding qr payload: %w", err)
	}

	return code.ToSmallString(false), nil
}

// WritePNG saves the code as a PNG image at path.
func WritePNG(payload, path string) error {
	if err := qrcode.WriteFile(payload, qrcode.Medium, pngSize, path); err != nil {
		return fmt.Errorf("writing qr png: %w", err)
	}

	return nil
}

// PNG returns the code as PNG bytes.
func PNG(payload string) ([]byte, error) {
	data, err := qrcode.Encode(payload, qrcode.Medium, pngSize)
	if err != nil {
		return nil, fmt.Errorf("encoding qr png: %w", err)
	}

	return data, nil
}
