package b2

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
)

// Upload sends the payload to the leased URL. The SHA-1 is computed over the
// exact bytes transmitted; nothing may transform the payload between hashing
// and sending or the remote integrity check fails.
func (c *Client) Upload(ctx context.Context, lease UploadLease, payload []byte, key, contentType string) (StoredObject, error) {
	sum := sha1.Sum(payload)

	raw, err := c.rt.RoundTrip(ctx, &Request{
		Method: http.MethodPost,
		URL:    lease.UploadURL,
		Header: map[string]string{
			"Authorization":     lease.Token,
			"X-Bz-File-Name":    url.PathEscape(key),
			"Content-Type":      contentType,
			"X-Bz-Content-Sha1": hex.EncodeToString(sum[:]),
			"Content-Length":    strconv.Itoa(len(payload)),
		},
		Body:    payload,
		Timeout: uploadTimeout,
	})
	if err != nil {
		return StoredObject{}, transportErr("upload file", err)
	}

	env := Normalize(raw)
	if !env.OK() {
		return StoredObject{}, remoteErr(KindUpload, env, "upload rejected")
	}

	obj := StoredObject{
		ID:   nestedString(env.Body, "fileId"),
		Name: nestedString(env.Body, "fileName"),
		Size: int64(len(payload)),
	}
	if obj.Name == "" {
		obj.Name = key
	}

	c.log.Debug().Str("key", key).Int("size", len(payload)).Msg("file uploaded")

	return obj, nil
}
