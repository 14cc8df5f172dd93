package plantuml

import (
	"bytes"
	"compress/flate"
	"fmt"

	"github.com/umlchat/umlchat-backend/internal/pkg/envutil"
)

// The PlantUML server uses its own base64 variant over raw-deflated text.
const encodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

const defaultServerBase = "http://www.plantuml.com/plantuml"

// Encode compresses the diagram description with raw DEFLATE and encodes the
// result in the PlantUML server's base64 alphabet. The output is a URL path
// segment: deterministic for a given input and free of characters that need
// escaping.
func Encode(diagram string) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("plantuml: init deflate: %w", err)
	}
	if _, err := w.Write([]byte(diagram)); err != nil {
		return "", fmt.Errorf("plantuml: deflate: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("plantuml: deflate: %w", err)
	}
	return encode64(buf.Bytes()), nil
}

// ImageURL returns the rendering URL for a diagram description on the
// configured PlantUML server (PLANTUML_SERVER_URL, public server by default).
func ImageURL(diagram string) (string, error) {
	encoded, err := Encode(diagram)
	if err != nil {
		return "", err
	}
	base := envutil.String("PLANTUML_SERVER_URL", defaultServerBase)
	return fmt.Sprintf("%s/img/%s", base, encoded), nil
}

func encode64(data []byte) string {
	var sb bytes.Buffer
	for i := 0; i < len(data); i += 3 {
		var b1, b2, b3 byte
		b1 = data[i]
		if i+1 < len(data) {
			b2 = data[i+1]
		}
		if i+2 < len(data) {
			b3 = data[i+2]
		}
		sb.WriteByte(encodeAlphabet[b1>>2])
		sb.WriteByte(encodeAlphabet[((b1&0x3)<<4)|(b2>>4)])
		sb.WriteByte(encodeAlphabet[((b2&0xF)<<2)|(b3>>6)])
		sb.WriteByte(encodeAlphabet[b3&0x3F])
	}
	return sb.String()
}
