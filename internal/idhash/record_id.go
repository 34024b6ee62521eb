package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeRecordID computes a deterministic record_id using SHA256.
// Formula: SHA256(store_id|product_id|date) with the date rendered as
// YYYY-MM-DD. Returns hex-encoded hash (64 characters).
//
// The dataset carries one observation per (store, product, date), so the
// hash doubles as the primary key and makes re-ingesting the same CSV
// idempotent at the storage layer.
func ComputeRecordID(storeID, productID string, date time.Time) string {
	data := fmt.Sprintf("%s|%s|%s", storeID, productID, date.Format("2006-01-02"))
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
