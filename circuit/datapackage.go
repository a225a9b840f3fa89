package circuit

import (
	"github.com/consensys/gnark/frontend"
	keccak "github.com/consensys/gnark/std/hash/sha3"
	"github.com/consensys/gnark/std/math/uints"

	"zkprice-circuit/protocol"
)

// DataPackage is the in-circuit encoding of a timestamped batch of data
// points. The data points are allocated in the package's canonical sorted
// order by the assignment builder; the circuit trusts that order and does
// not re-verify it. A mis-sorted allocation only produces a digest that
// mismatches the signed message.
type DataPackage struct {
	DataPoints      []DataPoint
	Timestamp       [protocol.TimestampByteSize]uints.U8
	ValueByteSize   [protocol.ValueByteSizeByteSize]uints.U8
	DataPointsCount [protocol.DataPointsCountByteSize]uints.U8
}

// Serialize emits the package wire format:
//
//	points (package order) || timestamp || value byte size || count
//
// This field order is the contract with the off-circuit signing protocol;
// guardians signed the Keccak-256 digest of exactly this layout.
func (p *DataPackage) Serialize() []uints.U8 {
	var out []uints.U8
	for i := range p.DataPoints {
		out = append(out, p.DataPoints[i].Serialize()...)
	}
	out = append(out, p.Timestamp[:]...)
	out = append(out, p.ValueByteSize[:]...)
	out = append(out, p.DataPointsCount[:]...)
	return out
}

// Hash returns the Keccak-256 digest of the package serialization, the
// message hash signatures are checked against.
func (p *DataPackage) Hash(api frontend.API) ([]uints.U8, error) {
	hasher, err := keccak.NewLegacyKeccak256(api)
	if err != nil {
		return nil, err
	}
	hasher.Write(p.Serialize())
	return hasher.Sum(), nil
}
