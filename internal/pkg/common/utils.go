package common

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// HashStrings 計算字串集合的 SHA-256，與順序無關
func HashStrings(values ...string) string {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)

	hash := sha256.Sum256([]byte(strings.Join(sorted, "\x00")))
	return hex.EncodeToString(hash[:])
}
