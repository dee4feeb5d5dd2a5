// Package appwrite is a minimal client for the Appwrite Databases REST API,
// covering the calls the cloner needs: reading a database's schema and
// documents, and recreating them on another instance.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/weehong/appwrite-database-cloner/errors"
)

// ErrNotFound indicates the requested entity does not exist on the service.
var ErrNotFound = errors.New("not found")

// ServiceError is an error response returned by the service.
type ServiceError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}

	return nil
}

// Client is an API client bound to one project of one instance.
type Client struct {
	endpoint string // base URL including the API version path
	project  string
	key      string

	http *http.Client
}

// NewClient creates a client for the given endpoint (e.g.
// "https://cloud.example.io/v1") authenticated with an API key.
func NewClient(endpoint, project, key string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		project:  project,
		key:      key,
		http:     &http.Client{Timeout: timeout},
	}
}

// call performs one JSON round-trip. queries are appended as repeated
// "queries[]" URL parameters. out may be nil when the response body is
// irrelevant.
func (c *Client) call(
	ctx context.Context,
	method, path string,
	queries []Query,
	body, out any,
) error {
	u := c.endpoint + path

	if len(queries) != 0 {
		params := url.Values{}
		for _, q := range queries {
			params.Add("queries[]", string(q))
		}

		u += "?" + params.Encode()
	}

	bodyData := []byte("")

	if body != nil {
		var err error

		bodyData, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(bodyData))
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.project)
	req.Header.Set("X-Appwrite-Key", c.key)

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "request")
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if res.StatusCode >= http.StatusBadRequest {
		svcErr := &ServiceError{}

		err = json.Unmarshal(data, svcErr)
		if err != nil || svcErr.Message == "" {
			svcErr.Message = http.StatusText(res.StatusCode)
		}

		svcErr.Code = res.StatusCode

		return svcErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	err = json.Unmarshal(data, out)

	return errors.Wrap(err, "decode response")
}
