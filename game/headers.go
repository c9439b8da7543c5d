// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package game

// Reserved header keys. These are computed by the builder and MUST NOT be
// overridden by caller-supplied custom headers (spec §4.3.4).
const (
	HeaderSeed               = "Seed"
	HeaderDataBitLength      = "DataBitLength"
	HeaderExpiryTime         = "ExpiryTime"
	HeaderExpiryTimeReadable = "ExpiryTimeReadable"
	HeaderRound              = "Round"
	HeaderBlockchainRef      = "BlockchainRef"
)

var reservedHeaderKeys = map[string]bool{
	HeaderSeed:               true,
	HeaderDataBitLength:      true,
	HeaderExpiryTime:         true,
	HeaderExpiryTimeReadable: true,
	HeaderRound:              true,
	HeaderBlockchainRef:      true,
}

// Headers is an insertion-ordered string-to-string mapping, matching
// spec §3's requirement that a GameRecord's headers preserve the order
// they were added in rather than the incidental order of a Go map.
type Headers struct {
	keys []string
	vals map[string]string
}

// NewHeaders returns an empty, insertion-ordered header set.
func NewHeaders() *Headers {
	return &Headers{vals: make(map[string]string)}
}

// Set adds key=value, or updates value in place if key was already set
// (without disturbing its position in iteration order).
func (h *Headers) Set(key, value string) {
	if _, exists := h.vals[key]; !exists {
		h.keys = append(h.keys, key)
	}
	h.vals[key] = value
}

// Get returns the value for key and whether it was present.
func (h *Headers) Get(key string) (string, bool) {
	v, ok := h.vals[key]
	return v, ok
}

// Keys returns header keys in insertion order.
func (h *Headers) Keys() []string {
	return h.keys
}

// ApplyCustom overlays caller-supplied headers onto h, skipping any
// reserved key (silently — reserved keys are computed by the builder, not
// user input) and any empty value, matching the original implementation's
// "only set a header if truthy" behavior.
func (h *Headers) ApplyCustom(custom map[string]string) {
	for key, value := range custom {
		if reservedHeaderKeys[key] || value == "" {
			continue
		}
		h.Set(key, value)
	}
}

// Clone returns a deep copy of h.
func (h *Headers) Clone() *Headers {
	c := &Headers{
		keys: append([]string{}, h.keys...),
		vals: make(map[string]string, len(h.vals)),
	}
	for k, v := range h.vals {
		c.vals[k] = v
	}
	return c
}
