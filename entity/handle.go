// Package entity tracks the live entity set of one decode pass and the
// point-in-time copies taken from it.
package entity

import "fmt"

const (
	// handleIndexBits is the width of the index portion of a raw handle.
	handleIndexBits = 14
	// HandleIndexMask extracts the entity index from a raw handle value.
	HandleIndexMask = (1 << handleIndexBits) - 1
	// RawHandleNone is the raw property value of an unset entity handle.
	RawHandleNone = (1 << 24) - 1
)

// Handle identifies one entity lifetime. The index names the slot, the
// serial disambiguates reuse of the slot; a stale serial never matches a
// later occupant.
type Handle struct {
	Index  int32 `json:"index"`
	Serial int32 `json:"serial"`
}

// String renders the handle as index/serial.
func (h Handle) String() string {
	return fmt.Sprintf("%d/%d", h.Index, h.Serial)
}

// IndexOfRaw extracts the entity index from a raw handle property value.
func IndexOfRaw(raw uint64) int32 {
	return int32(raw & HandleIndexMask)
}

// HandleFromRaw splits a raw handle property value into index and serial.
func HandleFromRaw(raw uint64) Handle {
	return Handle{
		Index:  IndexOfRaw(raw),
		Serial: int32(raw >> handleIndexBits),
	}
}

// RawIsSet reports whether a raw handle property points at an entity.
func RawIsSet(raw uint64) bool {
	return raw != 0 && raw != RawHandleNone
}
