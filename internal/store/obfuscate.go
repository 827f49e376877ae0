package store

import (
	"encoding/base64"
	"fmt"
)

// Obfuscate XORs data with a rolling passphrase and base64-encodes the
// result. This is NOT encryption: it only deters casual inspection of the
// raw store, and anyone with this source can reverse it. Do not treat the
// output as confidential.
func Obfuscate(data []byte, passphrase string) string {
	return base64.StdEncoding.EncodeToString(xorRoll(data, passphrase))
}

// Deobfuscate reverses Obfuscate.
func Deobfuscate(s string, passphrase string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode obfuscated value: %w", err)
	}
	return xorRoll(raw, passphrase), nil
}

func xorRoll(data []byte, passphrase string) []byte {
	if passphrase == "" {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ passphrase[i%len(passphrase)]
	}
	return out
}
