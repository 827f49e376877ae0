package store

import "github.com/sandevgo/drambot/internal/core"

// schemaVersion is stamped into every stored entry. A version mismatch on
// read is treated the same as a malformed entry: the handle falls back to
// its default and records the error.
const schemaVersion = 1

// defaultPassphrase keys the obfuscation of sensitive values when none is
// configured. Named after the share of the cask the angels take. Changing
// it orphans previously stored sensitive values.
const defaultPassphrase = "angels-share"

// Store binds a KV medium to the obfuscation passphrase. Typed handles
// are created per key with NewValue.
type Store struct {
	kv         core.KV
	passphrase string
}

func New(kv core.KV, passphrase string) *Store {
	if passphrase == "" {
		passphrase = defaultPassphrase
	}
	return &Store{kv: kv, passphrase: passphrase}
}

type options struct {
	sensitive bool
}

type Option func(*options)

// Sensitive marks the value for obfuscation at rest. See Obfuscate for
// what that does and does not protect against.
func Sensitive() Option {
	return func(o *options) {
		o.sensitive = true
	}
}
