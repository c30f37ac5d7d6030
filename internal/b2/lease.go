package b2

import (
	"context"
	"encoding/json"
	"net/http"
)

// NewUploadLease asks the API for a one-shot upload URL and token scoped to
// the bucket. Request a fresh lease after any failed upload.
func (c *Client) NewUploadLease(ctx context.Context, s Session, bucketID string) (UploadLease, error) {
	body, err := json.Marshal(map[string]string{"bucketId": bucketID})
	if err != nil {
		return UploadLease{}, &Error{Kind: KindLease, Message: "encode lease request", Err: err}
	}

	raw, err := c.rt.RoundTrip(ctx, &Request{
		Method: http.MethodPost,
		URL:    s.APIURL + "/b2api/v3/b2_get_upload_url",
		Header: map[string]string{
			"Authorization": s.Token,
			"Content-Type":  "application/json",
		},
		Body: body,
	})
	if err != nil {
		return UploadLease{}, transportErr("get upload url", err)
	}

	env := Normalize(raw)
	if !env.OK() {
		return UploadLease{}, remoteErr(KindLease, env, "upload url request rejected")
	}

	uploadURL := nestedString(env.Body, "uploadUrl")
	token := nestedString(env.Body, "authorizationToken")
	if uploadURL == "" || token == "" {
		return UploadLease{}, remoteErr(KindLease, env, "lease response missing uploadUrl or authorizationToken")
	}

	return UploadLease{UploadURL: uploadURL, Token: token}, nil
}
