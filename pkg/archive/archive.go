// Package archive stores intercepted BlazorPack batches.
//
// A Capture pairs the raw bytes seen on the wire with their rendered JSON
// form. Stores persist captures to local disk (DiskStore), S3 (S3Store), or
// nowhere (Nop); Limited caps how often a Store is written to.
package archive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
)

// Direction is the flow a capture was taken from.
type Direction string

const (
	// Request is client to server traffic.
	Request Direction = "request"
	// Response is server to client traffic.
	Response Direction = "response"
	// WebSocketIn is a frame read from the browser.
	WebSocketIn Direction = "ws-in"
	// WebSocketOut is a frame read from the upstream server.
	WebSocketOut Direction = "ws-out"
)

// ErrRateLimited is returned by Limited when a capture is dropped.
var ErrRateLimited = errors.New("archive: rate limited")

// Capture is one intercepted batch.
type Capture struct {
	Direction Direction `json:"direction"`
	URL       string    `json:"url"`
	Raw       []byte    `json:"-"`
	JSON      []byte    `json:"-"`
	Time      time.Time `json:"time"`
}

// Store persists captures and returns the key they were stored under.
type Store interface {
	Put(ctx context.Context, c Capture) (string, error)
}

// newID returns a sortable capture key: capture time plus random suffix.
func newID(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	b := make([]byte, 6)
	rand.Read(b)
	return t.UTC().Format("20060102T150405.000000000Z") + "-" + hex.EncodeToString(b)
}

type nop struct{}

// Nop is a Store that discards every capture.
var Nop Store = nop{}

func (nop) Put(ctx context.Context, c Capture) (string, error) {
	return "", nil
}
