package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests. The version suffix allows the
// algorithm to change without colliding with older digests.
const (
	DomainValue  = "glimpse/value/v1"
	DomainReport = "glimpse/report/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ValueDigest returns the content digest of a value. Equal values have
// equal digests regardless of object key order or string normalization form.
func ValueDigest(v IRValue) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ValueDigest: %w", err)
	}
	return hashWithDomain(DomainValue, canonical), nil
}

// ReportDigest returns the digest of a pass outcome: the ordered list of
// evaluated ids paired with their value digests.
func ReportDigest(entries IRArray) (string, error) {
	canonical, err := MarshalCanonical(entries)
	if err != nil {
		return "", fmt.Errorf("ReportDigest: %w", err)
	}
	return hashWithDomain(DomainReport, canonical), nil
}
