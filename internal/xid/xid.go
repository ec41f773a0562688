// Package xid generates collision-resistant ids for artifacts that have no
// natural key, such as receipt files for orders the remote side never
// numbered.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns "<prefix>-<unix nanos>-<8 random bytes hex>". When the random
// source fails the timestamp alone still keeps ids unique enough for file
// names.
func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
