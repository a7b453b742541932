// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package backlog

import (
	"net/http"
	"net/url"
	"time"
)

// DefaultProbeTimeout bounds a single liveness probe. One attempt per
// probe per run; the operator re-runs validation rather than the
// engine retrying.
const DefaultProbeTimeout = 5 * time.Second

// Status is the outcome of probing a service URL.
type Status int

const (
	Reachable Status = iota
	Unreachable
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	case TimedOut:
		return "timed out"
	}
	return "unknown"
}

// Prober answers whether a URL responds successfully. Implementations
// must never panic or block past their timeout; rules stay pure
// functions of the world state by going through this interface.
type Prober interface {
	Probe(target string) Status
}

// HTTPProber probes with a single GET and a hard timeout.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber returns a prober with the given timeout, or
// DefaultProbeTimeout when zero.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &HTTPProber{client: &http.Client{Timeout: timeout}}
}

// Client exposes the underlying HTTP client so tests can intercept it.
func (p *HTTPProber) Client() *http.Client { return p.client }

// Probe issues one GET against target. Any 2xx answer is Reachable; a
// timeout is reported distinctly; every other failure, including a
// non-success status, is Unreachable.
func (p *HTTPProber) Probe(target string) Status {
	resp, err := p.client.Get(target)
	if err != nil {
		if uerr, ok := err.(*url.Error); ok && uerr.Timeout() {
			return TimedOut
		}
		return Unreachable
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Reachable
	}
	return Unreachable
}
