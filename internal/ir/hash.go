package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the hashed
// shape to change without colliding with older keys.
const (
	DomainQuery = "semsql/query/v1"
	DomainModel = "semsql/model/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CacheKey identifies a rendered query for result caching. Two renders of the
// same SQL for the same dialect share a key; options that change execution
// (e.g. a row limit applied by the caller) are folded in as well.
func CacheKey(dialect, sql string, options IRObject) (string, error) {
	obj := IRObject{
		"dialect": IRString(dialect),
		"sql":     IRString(sql),
	}
	if len(options) > 0 {
		obj["options"] = options
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CacheKey: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// ModelHash fingerprints a compiled model's canonical form.
func ModelHash(canonical IRObject) (string, error) {
	data, err := MarshalCanonical(canonical)
	if err != nil {
		return "", fmt.Errorf("ModelHash: %w", err)
	}
	return hashWithDomain(DomainModel, data), nil
}

// MustCacheKey is like CacheKey but panics on error. Use only in tests.
func MustCacheKey(dialect, sql string, options IRObject) string {
	key, err := CacheKey(dialect, sql, options)
	if err != nil {
		panic(err)
	}
	return key
}
