package qr

import (
	"encoding/base64"
	"testing"
)

func TestEncode_ProducesBase64PNG(t *testing.T) {
	enc := NewEncoder("clinic-wallet-001")

	out, err := enc.Encode(150.50, "PAY-2026-0042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	png, err := base64.StdEncoding.DecodeString(out)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Error("expected a PNG image payload")
	}
}

func TestEncode_DistinctPayloads(t *testing.T) {
	enc := NewEncoder("clinic-wallet-001")

	a, err := enc.Encode(100, "REF-A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := enc.Encode(200, "REF-B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Error("different payments must encode to different images")
	}
}
