package service

// QRCodeService defines the interface for QR code rendering.
type QRCodeService interface {
	// RenderPNG encodes the given content (e.g. an otpauth:// provisioning
	// URI) as a PNG QR code image.
	RenderPNG(content string) ([]byte, error)
}
