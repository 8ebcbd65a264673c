// Package stamp builds and checks the verification payload encoded in a certificate's QR
// code. A payload carries the identifying fields of a session plus a truncated keyed
// BLAKE2b MAC, so an edited screenshot can be told apart from a generated one.
package stamp

import (
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/mrraes/bewijs/internal/format"
	"github.com/mrraes/bewijs/internal/model"
)

const (
	version   = "bewijs1"
	sep       = "|"
	macBytes  = 8
	timestamp = "200601021504"
)

// Payload returns the stamp for s rendered at at.
func Payload(s model.Summary, at time.Time, key []byte) string {
	total := s.Total
	if total == 0 {
		total = float64(len(s.Questions))
	}
	body := strings.Join([]string{
		version,
		clean(s.GameID),
		clean(s.Name),
		clean(s.Class),
		format.Score(s.Score, total),
		string(s.Mode),
		strconv.Itoa(s.Seconds),
		at.UTC().Format(timestamp),
	}, sep)
	return body + sep + mac(body, key)
}

// Verify reports whether payload was produced by Payload with the same key.
func Verify(payload string, key []byte) bool {
	i := strings.LastIndex(payload, sep)
	if i < 0 || !strings.HasPrefix(payload, version+sep) {
		return false
	}
	body, got := payload[:i], payload[i+1:]
	if strings.Count(body, sep) != 7 {
		return false
	}
	want := mac(body, key)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// Signer returns a function suitable as a renderer stamp.
func Signer(key []byte) func(model.Summary, time.Time) string {
	return func(s model.Summary, at time.Time) string {
		return Payload(s, at, key)
	}
}

func mac(body string, key []byte) string {
	// blake2b accepts keys of at most 64 bytes.
	if len(key) > blake2b.Size {
		k := blake2b.Sum256(key)
		key = k[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil)[:macBytes])
}

func clean(s string) string {
	return strings.ReplaceAll(s, sep, "/")
}
