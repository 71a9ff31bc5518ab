package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"path"
	"strconv"
	"strings"
	"time"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ObjectName builds a storage key as <epoch-ms>-<random>.<ext> from the
// original file name. The random fraction keeps names generated in the same
// millisecond apart.
func ObjectName(original string, now time.Time) string {
	return objectName(original, now, rand.Float64())
}

func objectName(original string, now time.Time, fraction float64) string {
	name := strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.FormatFloat(fraction, 'f', -1, 64)
	if ext := Extension(original); ext != "" {
		name += "." + ext
	}
	return name
}

// Extension returns the text after the last dot of the file name, lower-cased,
// or "" when there is none
func Extension(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	i := strings.LastIndex(base, ".")
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}
