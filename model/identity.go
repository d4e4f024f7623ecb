package model

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// ChannelID identifies a verification channel on the messaging platform.
// One channel per session; never reused across sessions.
type ChannelID uint64

// IdentityRef is the platform contact bound to a verified session.
// It is persisted as 4 bytes, big-endian, in both store directions.
type IdentityRef uint32

func (id IdentityRef) Bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(id))
	return b
}

func ParseIdentityRef(b []byte) (IdentityRef, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("identity ref should be 4 bytes but was %v", len(b))
	}
	return IdentityRef(binary.BigEndian.Uint32(b)), nil
}

func (id IdentityRef) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Identity is a resolved identity: the opaque ref plus the display name and
// address reported by the platform.
type Identity struct {
	Ref  IdentityRef
	Name string
	Addr string
}
