// Package qr encodes wallet-payment payloads as QR PNG images.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload is the small structured document embedded in a payment QR code.
type Payload struct {
	Account   string  `json:"account"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
}

// Encoder produces QR images for a fixed provider account.
type Encoder struct {
	account string
}

func NewEncoder(account string) *Encoder {
	return &Encoder{account: account}
}

// Encode returns the payload's QR code as a base64 PNG suitable for direct
// embedding in a dashboard <img> tag.
func (e *Encoder) Encode(amount float64, reference string) (string, error) {
	payload := Payload{Account: e.account, Amount: amount, Reference: reference}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal qr payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
