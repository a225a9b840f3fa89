package protocol

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// DataPoint is one (feed id, value) observation. The value is stored already
// scaled by 10^DefaultValueDecimals.
type DataPoint struct {
	FeedID string
	Value  *uint256.Int
}

// NewDataPoint parses value as an unsigned decimal numeral with an optional
// fractional part and scales it by 10^DefaultValueDecimals. Fractional
// digits beyond the scaling precision are truncated. Malformed numerals and
// oversized feed ids are rejected; nothing is silently truncated to fit the
// fixed widths.
func NewDataPoint(feedID, value string) (DataPoint, error) {
	if len(feedID) > FeedIDByteSize {
		return DataPoint{}, fmt.Errorf("%w: %q is %d bytes", ErrFeedIDTooLong, feedID, len(feedID))
	}
	v, err := parseValue(value)
	if err != nil {
		return DataPoint{}, err
	}
	return DataPoint{FeedID: feedID, Value: v}, nil
}

// SerializeFeedID returns the feed id as UTF-8 bytes right-padded with
// zeros to FeedIDByteSize.
func (p DataPoint) SerializeFeedID() []byte {
	out := make([]byte, FeedIDByteSize)
	copy(out, p.FeedID)
	return out
}

// SerializeValue returns the scaled value as a DefaultValueByteSize-wide
// big-endian unsigned integer.
func (p DataPoint) SerializeValue() []byte {
	b32 := p.Value.Bytes32()
	return b32[:]
}

// Serialize concatenates feed id and value with no separators.
func (p DataPoint) Serialize() []byte {
	return append(p.SerializeFeedID(), p.SerializeValue()...)
}

func parseValue(s string) (*uint256.Int, error) {
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" || !isDigits(intPart) || (hasFrac && !isDigits(fracPart)) {
		return nil, fmt.Errorf("%w: %q is not an unsigned decimal numeral", ErrValueFormat, s)
	}
	if len(fracPart) > DefaultValueDecimals {
		fracPart = fracPart[:DefaultValueDecimals]
	}
	scaled := intPart + fracPart + strings.Repeat("0", DefaultValueDecimals-len(fracPart))
	n, ok := new(big.Int).SetString(scaled, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an unsigned decimal numeral", ErrValueFormat, s)
	}
	v, overflow := uint256.FromBig(n)
	if overflow {
		return nil, fmt.Errorf("%w: %q overflows 256 bits after scaling", ErrValueFormat, s)
	}
	return v, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
