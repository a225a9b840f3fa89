package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/crypto"
)

// DataPackage is a timestamped batch of data points serialized and signed as
// one unit. Serialization always emits the data points in canonical sorted
// order; the signature a guardian produced covers exactly that layout.
type DataPackage struct {
	DataPoints []DataPoint
	Timestamp  uint64 // epoch milliseconds
}

// NewDataPackage builds a package from data points in any order. The
// timestamp must fit the fixed 6-byte field.
func NewDataPackage(points []DataPoint, timestampMs uint64) (*DataPackage, error) {
	if timestampMs >= 1<<(8*TimestampByteSize) {
		return nil, fmt.Errorf("%w: %d", ErrTimestampRange, timestampMs)
	}
	return &DataPackage{DataPoints: points, Timestamp: timestampMs}, nil
}

// SortedDataPoints returns the data points in canonical order: ascending
// lexicographic order of the serialized 32-byte feed id.
func (p *DataPackage) SortedDataPoints() []DataPoint {
	points := slices.Clone(p.DataPoints)
	slices.SortStableFunc(points, func(a, b DataPoint) int {
		return bytes.Compare(a.SerializeFeedID(), b.SerializeFeedID())
	})
	return points
}

// SerializeTimestamp returns the timestamp as a 6-byte big-endian integer.
func (p *DataPackage) SerializeTimestamp() []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], p.Timestamp)
	return buf[8-TimestampByteSize:]
}

// SerializeDataPointsCount returns the data point count as a 3-byte
// big-endian integer.
func (p *DataPackage) SerializeDataPointsCount() []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(len(p.DataPoints)))
	return buf[4-DataPointsCountByteSize:]
}

// SerializeValueByteSize returns the configured value width as a 4-byte
// big-endian integer.
func (p *DataPackage) SerializeValueByteSize() []byte {
	var buf [ValueByteSizeByteSize]byte
	binary.BigEndian.PutUint32(buf[:], DefaultValueByteSize)
	return buf[:]
}

// Serialize emits the package wire format:
//
//	points (sorted) || timestamp || value byte size || data points count
//
// Any deviation from this field order breaks signature verification
// downstream, since guardians sign the digest of exactly this layout.
func (p *DataPackage) Serialize() []byte {
	var out []byte
	for _, dp := range p.SortedDataPoints() {
		out = append(out, dp.Serialize()...)
	}
	out = append(out, p.SerializeTimestamp()...)
	out = append(out, p.SerializeValueByteSize()...)
	out = append(out, p.SerializeDataPointsCount()...)
	return out
}

// SigningDigest is the Keccak-256 digest of the package serialization, the
// message hash guardian signatures are checked against.
func (p *DataPackage) SigningDigest() [32]byte {
	var digest [32]byte
	copy(digest[:], crypto.Keccak256(p.Serialize()))
	return digest
}
