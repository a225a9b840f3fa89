// Package protocol implements the plaintext half of the oracle price
// protocol: canonical construction, canonical sort order and the fixed-width
// byte serialization of data points and data packages. The byte layout
// produced here is a wire-format contract with the guardian signers; the
// in-circuit encoding must reproduce it exactly.
package protocol

import "errors"

const (
	// FeedIDByteSize is the fixed width of a serialized data feed id.
	FeedIDByteSize = 32
	// DefaultValueByteSize is the fixed width of a serialized data point value.
	DefaultValueByteSize = 32
	// TimestampByteSize is the fixed width of the serialized timestamp
	// (epoch milliseconds, big-endian).
	TimestampByteSize = 6
	// DataPointsCountByteSize is the fixed width of the data point count field.
	DataPointsCountByteSize = 3
	// ValueByteSizeByteSize is the fixed width of the field carrying the
	// configured value width.
	ValueByteSizeByteSize = 4
	// DefaultValueDecimals is the decimal scaling applied to data point
	// values: a value string "20000" is encoded as 20000 * 10^8.
	DefaultValueDecimals = 8
	// SignatureByteSize is the width of a recoverable guardian signature:
	// r[32] || s[32] || v[1].
	SignatureByteSize = 65
	// AddressByteSize is the width of a guardian address.
	AddressByteSize = 20
)

var (
	// ErrValueFormat reports a data point value that is not an unsigned
	// decimal numeral, or one that overflows 256 bits after scaling.
	ErrValueFormat = errors.New("protocol: malformed data point value")
	// ErrFeedIDTooLong reports a feed id longer than its fixed width.
	ErrFeedIDTooLong = errors.New("protocol: data feed id exceeds 32 bytes")
	// ErrTimestampRange reports a timestamp that does not fit the 6-byte field.
	ErrTimestampRange = errors.New("protocol: timestamp exceeds 48 bits")
)
