package exchangerate

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/bankimport/date"
)

// dayCache is an http.RoundTripper that caches successful responses on disk
// for the rest of the calendar day. Historical rates never change, and the
// convert and history commands typically run back to back over the same
// range, so within a day the second request is free.
type dayCache struct {
	base http.RoundTripper
}

// cachePath names the cache file for a request. The current day is part of
// the name, so yesterday's entries are simply never looked up again and a
// stale cache expires by being ignored.
func cachePath(req *http.Request) string {
	sum := sha1.Sum([]byte(req.Method + " " + req.URL.String()))
	name := fmt.Sprintf("bki-%s-%x", date.Today(), sum)
	return filepath.Join(os.TempDir(), name)
}

func (c *dayCache) RoundTrip(req *http.Request) (*http.Response, error) {
	path := cachePath(req)
	if resp, err := load(path, req); err == nil {
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)

	// only successful responses are worth replaying tomorrow's retry against
	if resp.StatusCode < 300 {
		if err := store(path, resp); err != nil {
			log.Printf("warning, cannot cache response: %v", err)
		}
	}
	return resp, nil
}

// load reads a previously stored response, if one exists for today.
func load(path string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// store dumps the whole response to disk. DumpResponse leaves the body
// readable for the caller.
func store(path string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}
