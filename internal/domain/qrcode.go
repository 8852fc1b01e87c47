package domain

import (
	"time"
)

// QR resolve visibility levels, highest first.
const (
	QRVisibilityAdmin   = "admin"
	QRVisibilityManager = "manager"
	QRVisibilityPublic  = "public"
)

// ProductQRCode links a product to a short shareable code. Code is unique
// across all brands; each product has at most one.
type ProductQRCode struct {
	ID            string     `json:"id"`
	ProductID     string     `json:"product_id"`
	Code          string     `json:"code"`
	Active        bool       `json:"active"`
	RegeneratedAt *time.Time `json:"regenerated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// QRCodeImage is a rendered QR code for a product short link, returned by
// the generate and regenerate operations.
type QRCodeImage struct {
	Code          string     `json:"code"`
	URL           string     `json:"url"`
	ImageBase64   string     `json:"image_base64"`
	MIMEType      string     `json:"mime_type"`
	RegeneratedAt *time.Time `json:"regenerated_at,omitempty"`
}
