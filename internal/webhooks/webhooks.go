// Package webhooks posts checklist change notifications to configured URLs.
package webhooks

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout     = 500 * time.Millisecond
	defaultConcurrency = 4
)

// Payload is the body POSTed after a state change.
type Payload struct {
	Event       string `json:"event"`
	SnapshotRev string `json:"snapshot_rev"`
	Complete    int    `json:"complete"`
	Items       int    `json:"items"`
	Pending     bool   `json:"pending"`
}

// Dispatcher sends payloads to a fixed set of targets.
type Dispatcher struct {
	urls   []string
	client *http.Client
	logger *log.Logger
}

// NewDispatcher validates urls and returns a dispatcher. Invalid URLs are
// logged and skipped. A nil logger uses the standard logger.
func NewDispatcher(urls []string, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	d := &Dispatcher{
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
	d.urls = d.normalize(urls)
	return d
}

// Targets returns the URL templates the dispatcher posts to.
func (d *Dispatcher) Targets() []string {
	return d.urls
}

// Resolve expands the {event} placeholder of every target.
func (d *Dispatcher) Resolve(p Payload) []string {
	if len(d.urls) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(d.urls))
	var out []string
	for _, raw := range d.urls {
		target := strings.TrimRight(strings.ReplaceAll(raw, "{event}", url.PathEscape(p.Event)), "/")
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

func (d *Dispatcher) normalize(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	var normalized []string
	for _, raw := range urls {
		trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
		if trimmed == "" {
			continue
		}
		if !isValidWebhookURL(trimmed) {
			d.logger.Printf("webhooks: skipping invalid url %q", trimmed)
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}

func isValidWebhookURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

// Dispatch posts p to every target and waits for the requests to finish.
// Failures are logged, never returned.
func (d *Dispatcher) Dispatch(p Payload) {
	urls := d.Resolve(p)
	if len(urls) == 0 {
		return
	}

	body, err := json.Marshal(p)
	if err != nil {
		d.logger.Printf("webhooks: failed to encode payload: %v", err)
		return
	}

	workers := defaultConcurrency
	if len(urls) < workers {
		workers = len(urls)
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for endpoint := range jobs {
				d.send(endpoint, body)
			}
		}()
	}

	for _, endpoint := range urls {
		jobs <- endpoint
	}
	close(jobs)
	wg.Wait()
}

func (d *Dispatcher) send(endpoint string, body []byte) {
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		d.logger.Printf("webhooks: build request %q failed: %v", endpoint, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Printf("webhooks: request to %q failed: %v", endpoint, err)
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		d.logger.Printf("webhooks: %q answered %s", endpoint, resp.Status)
	}
}
