// Package media resolves project image payloads and stores the resulting
// files. An image string arriving on the API is parsed exactly once into a
// tagged variant: an inline base64 data URI or a plain URL kept verbatim.
package media

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dataURIPrefix = "data:image/"
const base64Marker = ";base64,"

// Payload is the resolved form of an image field value.
type Payload interface {
	isPayload()
}

// DataURI is an inline image: decoded bytes plus the MIME subtype the file
// extension derives from.
type DataURI struct {
	Subtype string
	Data    []byte
}

func (DataURI) isPayload() {}

// RemoteURL is an image string that is already a final URL and is stored
// verbatim.
type RemoteURL struct {
	URL string
}

func (RemoteURL) isPayload() {}

// ParsePayload classifies an image field value. Strings beginning with the
// image data-URI prefix must carry a well-formed base64 section; anything
// else is treated as a final URL.
func ParsePayload(value string) (Payload, error) {
	if !strings.HasPrefix(value, dataURIPrefix) {
		return RemoteURL{URL: value}, nil
	}

	rest := strings.TrimPrefix(value, dataURIPrefix)
	idx := strings.Index(rest, base64Marker)
	if idx < 0 {
		return nil, fmt.Errorf("malformed image data URI: missing base64 marker")
	}
	subtype := rest[:idx]
	if subtype == "" {
		return nil, fmt.Errorf("malformed image data URI: missing MIME subtype")
	}

	data, err := base64.StdEncoding.DecodeString(rest[idx+len(base64Marker):])
	if err != nil {
		return nil, fmt.Errorf("malformed image data URI: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("malformed image data URI: empty payload")
	}

	return DataURI{Subtype: subtype, Data: data}, nil
}

// Namer generates collision-resistant image file names. The clock and random
// source are injectable so naming is deterministic in tests.
type Namer struct {
	now    func() time.Time
	random func() string
}

func NewNamer() *Namer {
	return &Namer{
		now: time.Now,
		random: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
		},
	}
}

// NewNamerWith builds a Namer from explicit clock and random providers.
func NewNamerWith(now func() time.Time, random func() string) *Namer {
	return &Namer{now: now, random: random}
}

// FileName returns "<unix-ts>_<random>.<ext>" for the given MIME subtype.
// Structured subtypes such as "svg+xml" map to their base extension.
func (n *Namer) FileName(subtype string) string {
	ext := subtype
	if idx := strings.Index(ext, "+"); idx > 0 {
		ext = ext[:idx]
	}
	return fmt.Sprintf("%d_%s.%s", n.now().Unix(), n.random(), ext)
}
