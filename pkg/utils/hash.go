package utils

import (
	"crypto/md5"
	"fmt"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// AnalysisCacheKey derives the cache key for an analysis response. The image
// payload can be megabytes of base64, so it is hashed rather than embedded.
func AnalysisCacheKey(prompt, image string) string {
	return HashString(prompt + "|" + HashString(image))
}
