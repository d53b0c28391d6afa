package assets

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FromHTTP is the source metadata attached to assets fetched over HTTP.
type FromHTTP struct {
	// URL is the request URL the bytes were fetched from.
	URL string
	// StatusCode is the response status.
	StatusCode int
	// ContentType is the response content type, if the server sent one.
	ContentType string
}

// HTTPAssetFetch loads asset bytes from an HTTP endpoint by appending the
// asset path's body to a base URL. Wrap it in DeferredAssetFetch to keep
// network latency off the maintenance thread.
type HTTPAssetFetch struct {
	// BaseURL is the URL prefix requests are resolved against.
	BaseURL string
	// Client is the HTTP client to use; nil falls back to a client with a
	// 30 second timeout.
	Client *http.Client
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// LoadBytes issues a GET for the asset and returns its body bytes.
func (f HTTPAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	client := f.Client
	if client == nil {
		client = defaultHTTPClient
	}
	url := strings.TrimSuffix(f.BaseURL, "/") + "/" + strings.TrimPrefix(path.Path(), "/")
	response, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %q: %v", ErrFetchFailed, url, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %q: unexpected status %s", ErrFetchFailed, url, response.Status)
	}
	bytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of %q: %v", ErrFetchFailed, url, err)
	}
	return NewBundle(
		&AssetBytesAreReadyToProcess{Bytes: bytes},
		&FromHTTP{
			URL:         url,
			StatusCode:  response.StatusCode,
			ContentType: response.Header.Get("Content-Type"),
		},
	), nil
}
