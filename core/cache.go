package core

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// Page is a rendered response body with its precomputed gzip form and ETag.
type Page struct {
	Body []byte
	Gzip []byte
	ETag string
}

func NewPage(body []byte) (*Page, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(body); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}

	return &Page{
		Body: body,
		Gzip: buf.Bytes(),
		ETag: generateETag(body),
	}, nil
}

type PageCache struct {
	mu    sync.RWMutex
	pages map[string]*Page
}

func NewPageCache() *PageCache {
	return &PageCache{pages: map[string]*Page{}}
}

func (c *PageCache) Get(key string) (*Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pages[key]
	return p, ok
}

func (c *PageCache) Store(key string, body []byte) (*Page, error) {
	p, err := NewPage(body)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.pages[key] = p
	c.mu.Unlock()
	return p, nil
}

func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.pages = map[string]*Page{}
	c.mu.Unlock()
}

func generateETag(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:])[:16] + `"`
}

func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// acceptsGzip reports whether the request's Accept-Encoding allows gzip. An
// explicit gzip entry wins over "*", and a q-value of 0 refuses the coding.
func acceptsGzip(r *http.Request) bool {
	wildcard := false
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, params, _ := strings.Cut(part, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))

		switch coding {
		case "gzip", "x-gzip":
			return qualityAllows(params)
		case "*":
			wildcard = qualityAllows(params)
		}
	}
	return wildcard
}

func qualityAllows(params string) bool {
	for _, param := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || strings.ToLower(strings.TrimSpace(key)) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return err == nil && q > 0
	}
	return true
}
