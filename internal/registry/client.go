// Package registry implements a small signature registry over HTTP/3:
// a client that fetches and publishes serialized signatures, and a server
// that stores them in memory. Modules share their interfaces through it
// without shipping source around.
package registry

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	http3 "github.com/quic-go/quic-go/http3"
	"golang.org/x/sync/singleflight"

	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/signature"
)

// ErrNotFound is returned when the registry has no signature under the
// requested module path.
var ErrNotFound = errors.New("registry: signature not found")

type cacheEntry struct {
	at   time.Time
	data []byte
	etag string
}

// Client talks to a remote signature registry. Repeated fetches of the
// same path within the cache TTL are served locally, and concurrent
// fetches of the same path are coalesced into one request.
type Client struct {
	base   string
	client *http.Client
	token  string

	mu    sync.RWMutex
	cache map[string]cacheEntry
	ttl   time.Duration
	sf    singleflight.Group
}

// NewClient creates a client for the registry at baseURL. It uses the
// MODULUS_REGISTRY_TOKEN environment variable as Bearer token if present.
func NewClient(baseURL string, tlsCfg *tls.Config) *Client {
	return NewClientWithAuth(baseURL, strings.TrimSpace(os.Getenv("MODULUS_REGISTRY_TOKEN")), tlsCfg)
}

// NewClientWithAuth allows specifying a Bearer token explicitly.
func NewClientWithAuth(baseURL, token string, tlsCfg *tls.Config) *Client {
	tr := &http3.Transport{TLSClientConfig: tlsCfg}

	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Transport: tr, Timeout: 30 * time.Second},
		token:  strings.TrimSpace(token),
		cache:  make(map[string]cacheEntry),
		ttl:    30 * time.Second,
	}
}

// Close shuts down the underlying HTTP/3 transport.
func (c *Client) Close() {
	if tr, ok := c.client.Transport.(*http3.Transport); ok {
		_ = tr.Close()
	}
}

func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		resp, err := c.client.Do(req)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		// backoff: 100ms, 200ms, 400ms.
		time.Sleep(time.Duration(100*(1<<attempt)) * time.Millisecond)
	}

	return nil, lastErr
}

// Fetch retrieves the serialized signature stored under a module path.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	c.mu.RLock()
	if e, ok := c.cache[path]; ok && time.Since(e.at) < c.ttl {
		c.mu.RUnlock()

		return append([]byte(nil), e.data...), nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sf.Do("fetch:"+path, func() (any, error) {
		u := c.base + "/signature?path=" + url.QueryEscape(path)

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		// conditional request with ETag.
		c.mu.RLock()
		if e, ok := c.cache[path]; ok && e.etag != "" {
			req.Header.Set("If-None-Match", e.etag)
		}
		c.mu.RUnlock()

		resp, err := c.doWithRetry(req)
		if err != nil {
			return nil, err
		}

		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotModified {
			c.mu.Lock()
			e := c.cache[path]
			e.at = time.Now()
			c.cache[path] = e
			c.mu.Unlock()

			return append([]byte(nil), e.data...), nil
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)

			return nil, fmt.Errorf("registry: fetch failed: %s", string(body))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[path] = cacheEntry{at: time.Now(), data: data, etag: resp.Header.Get("ETag")}
		c.mu.Unlock()

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

// FetchSignature fetches and deserializes a signature. Metavariable
// references in the stored terms allocate in metas.
func (c *Client) FetchSignature(ctx context.Context, path string, metas *core.MetaRegistry) (*signature.Signature, error) {
	data, err := c.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	return signature.Load(data, metas)
}

// Publish uploads a signature under its module path.
func (c *Client) Publish(ctx context.Context, sig *signature.Signature) error {
	data, err := signature.Save(sig)
	if err != nil {
		return err
	}

	u := c.base + "/publish?path=" + url.QueryEscape(sig.Path())

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.doWithRetry(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return fmt.Errorf("registry: publish failed: %s", string(body))
	}

	c.mu.Lock()
	delete(c.cache, sig.Path())
	c.mu.Unlock()

	return nil
}
