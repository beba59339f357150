package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Store is a file-backed cache of JSON payloads keyed by fingerprint.
// Writes are idempotent per key, so concurrent writers may race safely
// (last writer wins with the same value).
type Store struct {
	dir string
	ttl time.Duration
}

func New(dir string, ttl time.Duration) *Store {
	return &Store{dir: dir, ttl: ttl}
}

// Fingerprint derives a stable key from every parameter that shapes a
// result set. Map keys are sorted by json.Marshal, so identical inputs
// always produce identical keys.
func Fingerprint(parts map[string]interface{}) string {
	raw, err := json.Marshal(parts)
	if err != nil {
		raw = []byte(fmt.Sprint(parts))
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached payload for key if it exists and is younger than
// the TTL. A missing, malformed, or expired entry reads as a miss.
func (s *Store) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	saved := gjson.GetBytes(data, "saved_at")
	if !saved.Exists() || time.Since(time.Unix(saved.Int(), 0)) > s.ttl {
		return nil, false
	}
	payload := gjson.GetBytes(data, "payload")
	if !payload.Exists() {
		return nil, false
	}
	return []byte(payload.Raw), true
}

// Put stores a JSON payload under key, stamped with the current time.
func (s *Store) Put(key string, payload []byte) error {
	if !gjson.ValidBytes(payload) {
		return fmt.Errorf("cache: payload is not valid JSON")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	env, err := sjson.SetBytes([]byte(`{}`), "saved_at", time.Now().Unix())
	if err != nil {
		return err
	}
	env, err = sjson.SetRawBytes(env, "payload", payload)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), env, 0644)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
