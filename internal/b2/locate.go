package b2

import (
	"context"
	"encoding/json"
	"net/http"
)

// FindByName resolves a storage key to its stored object by listing a single
// page scoped by prefix and scanning for an exact name match; a bare prefix
// hit is not enough since the prefix may match longer keys. A missing key is
// reported via found=false, not an error.
func (c *Client) FindByName(ctx context.Context, s Session, bucketID, key string) (StoredObject, bool, error) {
	body, err := json.Marshal(map[string]any{
		"bucketId":     bucketID,
		"prefix":       key,
		"maxFileCount": listPageSize,
	})
	if err != nil {
		return StoredObject{}, false, &Error{Kind: KindLookup, Message: "encode list request", Err: err}
	}

	raw, err := c.rt.RoundTrip(ctx, &Request{
		Method: http.MethodPost,
		URL:    s.APIURL + "/b2api/v3/b2_list_file_names",
		Header: map[string]string{
			"Authorization": s.Token,
			"Content-Type":  "application/json",
		},
		Body: body,
	})
	if err != nil {
		return StoredObject{}, false, transportErr("list file names", err)
	}

	env := Normalize(raw)
	if !env.OK() {
		return StoredObject{}, false, remoteErr(KindLookup, env, "list file names rejected")
	}

	// A 200 whose body is not a JSON object (the transport keeps non-JSON
	// bodies as strings) must not read as "no files": that would let a
	// composed delete report success against a listing that never happened.
	payload, ok := env.Body.(map[string]any)
	if !ok {
		return StoredObject{}, false, &Error{Kind: KindLookup, Message: "list file names returned a non-object body"}
	}
	files, _ := payload["files"].([]any)
	for _, f := range files {
		name := nestedString(f, "fileName")
		if name != key {
			continue
		}
		return StoredObject{
			ID:   nestedString(f, "fileId"),
			Name: name,
			Size: nestedInt64(f, "contentLength"),
		}, true, nil
	}
	return StoredObject{}, false, nil
}

// Delete removes a specific file version by id and name.
func (c *Client) Delete(ctx context.Context, s Session, obj StoredObject) (DeleteOutcome, error) {
	body, err := json.Marshal(map[string]string{
		"fileId":   obj.ID,
		"fileName": obj.Name,
	})
	if err != nil {
		return DeleteOutcome{}, &Error{Kind: KindDelete, Message: "encode delete request", Err: err}
	}

	raw, err := c.rt.RoundTrip(ctx, &Request{
		Method: http.MethodPost,
		URL:    s.APIURL + "/b2api/v3/b2_delete_file_version",
		Header: map[string]string{
			"Authorization": s.Token,
			"Content-Type":  "application/json",
		},
		Body: body,
	})
	if err != nil {
		return DeleteOutcome{}, transportErr("delete file version", err)
	}

	env := Normalize(raw)
	if !env.OK() {
		return DeleteOutcome{}, remoteErr(KindDelete, env, "delete file version rejected")
	}

	return DeleteOutcome{Deleted: true, Message: "deleted"}, nil
}

// DeleteByName removes a stored object by key: list-then-delete, since the
// API has no delete-by-name primitive. Deletion is idempotent; a key that is
// already gone short-circuits to success without issuing a delete call.
func (c *Client) DeleteByName(ctx context.Context, s Session, bucketID, key string) (DeleteOutcome, error) {
	obj, found, err := c.FindByName(ctx, s, bucketID, key)
	if err != nil {
		return DeleteOutcome{}, err
	}
	if !found {
		c.log.Debug().Str("key", key).Msg("file already absent")
		return DeleteOutcome{Deleted: true, Message: "already absent"}, nil
	}
	return c.Delete(ctx, s, obj)
}
