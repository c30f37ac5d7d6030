package b2

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURL derives the public download URL for a stored key. The key is
// percent-encoded as a whole (slashes included), matching the encoding used
// in the upload's file-name header so the URL resolves the same object.
func BuildURL(s Session, bucketName, key, customDomain string) string {
	encoded := url.PathEscape(key)
	if customDomain != "" {
		return strings.TrimRight(customDomain, "/") + "/" + encoded
	}
	return s.DownloadURL + "/file/" + bucketName + "/" + encoded
}

// ParseStorageKey reverses BuildURL: it recovers the storage key from a
// previously returned public URL, accepting both the native
// /file/<bucket>/<key> shape and the custom-domain shape.
func ParseStorageKey(rawURL, bucketName, customDomain string) (string, error) {
	marker := "/file/" + bucketName + "/"
	if i := strings.Index(rawURL, marker); i >= 0 {
		return url.PathUnescape(rawURL[i+len(marker):])
	}
	if customDomain != "" {
		base := strings.TrimRight(customDomain, "/") + "/"
		if rest, ok := strings.CutPrefix(rawURL, base); ok {
			return url.PathUnescape(rest)
		}
	}
	return "", fmt.Errorf("url %q does not address bucket %q", rawURL, bucketName)
}
