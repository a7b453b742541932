// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package backlog

import (
	"errors"
	"testing"
	"time"

	"github.com/h2non/gock"
)

var errConnRefused = errors.New("connect: connection refused")

// timeoutError satisfies net.Error with Timeout() == true.
type timeoutError struct{}

func (timeoutError) Error() string   { return "probe deadline exceeded" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestHTTPProber_Reachable(t *testing.T) {
	defer gock.Off()
	prober := NewHTTPProber(time.Second)
	gock.InterceptClient(prober.Client())

	gock.New("http://grafana.local").
		Get("/api/health").
		Reply(200).
		JSON(map[string]string{"database": "ok"})

	if got := prober.Probe("http://grafana.local/api/health"); got != Reachable {
		t.Errorf("probe: got %v, want Reachable", got)
	}
}

func TestHTTPProber_NonSuccessStatusIsUnreachable(t *testing.T) {
	defer gock.Off()
	prober := NewHTTPProber(time.Second)
	gock.InterceptClient(prober.Client())

	gock.New("http://grafana.local").
		Get("/").
		Reply(503)

	if got := prober.Probe("http://grafana.local/"); got != Unreachable {
		t.Errorf("probe: got %v, want Unreachable", got)
	}
}

func TestHTTPProber_TimeoutIsDistinct(t *testing.T) {
	defer gock.Off()
	prober := NewHTTPProber(time.Second)
	gock.InterceptClient(prober.Client())

	gock.New("http://grafana.local").
		Get("/").
		ReplyError(timeoutError{})

	if got := prober.Probe("http://grafana.local/"); got != TimedOut {
		t.Errorf("probe: got %v, want TimedOut", got)
	}
}

func TestHTTPProber_ConnectionErrorIsUnreachable(t *testing.T) {
	defer gock.Off()
	prober := NewHTTPProber(time.Second)
	gock.InterceptClient(prober.Client())

	gock.New("http://grafana.local").
		Get("/").
		ReplyError(errConnRefused)

	if got := prober.Probe("http://grafana.local/"); got != Unreachable {
		t.Errorf("probe: got %v, want Unreachable", got)
	}
}

func TestHTTPProber_DefaultTimeout(t *testing.T) {
	prober := NewHTTPProber(0)
	if got := prober.Client().Timeout; got != DefaultProbeTimeout {
		t.Errorf("timeout: got %v, want %v", got, DefaultProbeTimeout)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		Reachable:   "reachable",
		Unreachable: "unreachable",
		TimedOut:    "timed out",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String(): got %q, want %q", status, got, want)
		}
	}
}
