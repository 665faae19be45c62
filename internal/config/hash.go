package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns a deterministic content hash of the configuration.
//
// The configuration is serialized with encoding/json, which emits struct
// fields in declaration order and map keys sorted, so the same logical
// configuration always hashes to the same value regardless of how its maps
// were populated. The cache store compares this hash against the one
// recorded with the cache to decide staleness: any change to any field
// invalidates the whole cache.
func (c *Config) Hash() string {
	data, err := json.Marshal(c)
	if err != nil {
		// Config only holds strings, maps and slices; Marshal cannot
		// fail on it. Hash the error text so a mismatch is forced.
		data = []byte(err.Error())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
