/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type sink struct {
	mu      sync.Mutex
	events  []map[string]any
	crashes []string
	hits    atomic.Int32
}

func (s *sink) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		s.mu.Lock()
		s.events = append(s.events, m)
		s.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.crashes = append(s.crashes, string(b))
		s.mu.Unlock()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (s *sink) snapshot() ([]map[string]any, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.events...), append([]string(nil), s.crashes...)
}

func TestCommandEventAndCrashUpload(t *testing.T) {
	var s sink
	srv := s.server(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()
	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Command("screenwriter format", 1500*time.Millisecond, errors.New("boom"))
	c.Flush(context.Background())
	c.UploadCrash([]byte("STACKTRACE"))

	events, crashes := s.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	e := events[0]
	if e["name"] != "command" || e["command"] != "screenwriter format" {
		t.Fatalf("unexpected event: %v", e)
	}
	if e["ok"] != false || e["ms"] != float64(1500) {
		t.Fatalf("unexpected outcome fields: %v", e)
	}
	if _, ok := e["ts"].(string); !ok {
		t.Fatalf("missing ts field")
	}
	if len(crashes) != 1 || crashes[0] != "STACKTRACE" {
		t.Fatalf("unexpected crash uploads: %v", crashes)
	}
}

func TestDisabledClientSendsNothing(t *testing.T) {
	var s sink
	srv := s.server(t)

	c := New(Config{OptIn: false, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash"})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("expected disabled client")
	}
	c.Event("ignored", nil)
	c.UploadCrash([]byte("ignored"))

	c2 := New(Config{OptIn: true, EventsURL: srv.URL + "/events"})
	defer c2.Close()
	c2.Event("", nil)
	c2.UploadCrash([]byte("no crash url"))
	c2.Flush(nil)

	time.Sleep(50 * time.Millisecond)
	if n := s.hits.Load(); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestSendErrorsAreDropped(t *testing.T) {
	c := New(Config{
		OptIn:        true,
		EventsURL:    "http://127.0.0.1:1/events",
		CrashURL:     "http://127.0.0.1:1/crash",
		Timeout:      50 * time.Millisecond,
		DebugLogging: true,
	})
	defer c.Close()
	c.Event("err", map[string]any{"a": 1})
	c.Flush(context.Background())
	c.UploadCrash([]byte("oops"))
}

func TestFromEnvAndDefault(t *testing.T) {
	t.Setenv(EnvOptIn, "yes")
	t.Setenv(EnvEventsURL, " http://127.0.0.1:0 ")
	t.Setenv(EnvCrashURL, "")
	t.Setenv(EnvTimeoutMS, "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "http://127.0.0.1:0" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}

	prev := SetDefault(nil)
	defer SetDefault(prev)
	d := Default()
	defer d.Close()
	if !d.Enabled() {
		t.Fatalf("default client should be enabled with env config")
	}
	if Default() != d {
		t.Fatalf("default client should be reused")
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Fatalf("nil client must be disabled")
	}
	c.Event("x", nil)
	c.Command("x", 0, nil)
	c.Flush(context.Background())
	c.UploadCrash([]byte("x"))
	c.Close()
}
