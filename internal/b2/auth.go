package b2

import (
	"context"
	"encoding/base64"
	"net/http"
)

// Authorize exchanges the key pair for a Session. The api/download base URLs
// live under the response's storage-API sub-object; older responses carry
// them at the top level, so both spots are checked. A missing downloadUrl
// falls back to the API base URL, which serves downloads as well.
func (c *Client) Authorize(ctx context.Context, creds Credentials) (Session, error) {
	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte(creds.KeyID+":"+creds.AppKey))

	raw, err := c.rt.RoundTrip(ctx, &Request{
		Method: http.MethodGet,
		URL:    authorizeURL,
		Header: map[string]string{"Authorization": basic},
	})
	if err != nil {
		return Session{}, transportErr("authorize account", err)
	}

	env := Normalize(raw)
	if !env.OK() {
		return Session{}, remoteErr(KindAuth, env, "authorization rejected")
	}

	apiURL := nestedString(env.Body, "apiInfo", "storageApi", "apiUrl")
	if apiURL == "" {
		apiURL = nestedString(env.Body, "apiUrl")
	}
	downloadURL := nestedString(env.Body, "apiInfo", "storageApi", "downloadUrl")
	if downloadURL == "" {
		downloadURL = nestedString(env.Body, "downloadUrl")
	}
	token := nestedString(env.Body, "authorizationToken")

	if apiURL == "" || token == "" {
		return Session{}, remoteErr(KindAuth, env, "authorize response missing apiUrl or authorizationToken")
	}
	if downloadURL == "" {
		downloadURL = apiURL
	}

	c.log.Debug().Str("api_url", apiURL).Str("download_url", downloadURL).Msg("account authorized")

	return Session{APIURL: apiURL, DownloadURL: downloadURL, Token: token}, nil
}
