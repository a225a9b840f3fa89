package circuit

import (
	"github.com/consensys/gnark/std/math/uints"

	"zkprice-circuit/protocol"
)

// DataPoint is the in-circuit fixed-size encoding of one (feed id, value)
// observation: 32 bytes of feed id followed by 32 bytes of value.
type DataPoint struct {
	FeedID [protocol.FeedIDByteSize]uints.U8
	Value  [protocol.DefaultValueByteSize]uints.U8
}

// Serialize concatenates feedID || value with no separators. Pure transform,
// used only as hashing input.
func (p *DataPoint) Serialize() []uints.U8 {
	out := make([]uints.U8, 0, len(p.FeedID)+len(p.Value))
	out = append(out, p.FeedID[:]...)
	out = append(out, p.Value[:]...)
	return out
}
