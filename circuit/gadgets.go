// Package circuit contains the in-circuit verification pipeline for signed
// oracle price packages: fixed-width byte encoding, Keccak-256 digesting,
// ECDSA public-key recovery and guardian address comparison, folded into a
// single validity bit. Everything here is expressed as constraints; a
// cryptographic mismatch is a false wire, never an error.
package circuit

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	keccak "github.com/consensys/gnark/std/hash/sha3"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
)

var (
	// ErrWitnessFormat reports malformed witness input: bad byte lengths,
	// unparsable numerals, or a byte string exceeding the field capacity.
	// It aborts circuit construction; it is never a provable outcome.
	ErrWitnessFormat = errors.New("circuit: malformed witness")
	// ErrArityMismatch reports a witness count that does not match the
	// circuit shape. It is a programmer error and aborts immediately.
	ErrArityMismatch = errors.New("circuit: witness arity mismatch")
)

// BytesToVariable interprets allocated bytes as a big-endian integer and
// folds them into a single native field element. The input must fit the
// field's safe capacity; longer inputs fail deterministically instead of
// wrapping around the modulus.
func BytesToVariable(api frontend.API, bs []uints.U8) (frontend.Variable, error) {
	capacity := (api.Compiler().FieldBitLen() - 1) / 8
	if len(bs) > capacity {
		return nil, fmt.Errorf("%w: %d bytes exceed the field capacity of %d bytes", ErrWitnessFormat, len(bs), capacity)
	}
	acc := frontend.Variable(0)
	for _, b := range bs {
		acc = api.Add(api.Mul(acc, 256), b.Val)
	}
	return acc, nil
}

// Uint256FromDecimal parses an unsigned decimal numeral into a 256-bit
// witness value together with its 32 big-endian byte components.
func Uint256FromDecimal(s string) (*big.Int, [32]byte, error) {
	var chunks [32]byte
	for _, c := range s {
		if c < '0' || c > '9' {
			return nil, chunks, fmt.Errorf("%w: %q is not an unsigned decimal numeral", ErrWitnessFormat, s)
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, chunks, fmt.Errorf("%w: %q is not an unsigned decimal numeral", ErrWitnessFormat, s)
	}
	if n.BitLen() > 256 {
		return nil, chunks, fmt.Errorf("%w: %q overflows 256 bits", ErrWitnessFormat, s)
	}
	n.FillBytes(chunks[:])
	return n, chunks, nil
}

// Uint256FromHex parses exactly 64 hexadecimal characters into a public
// 256-bit constant.
func Uint256FromHex(s string) (*big.Int, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWitnessFormat, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: decoded %d bytes, want 32", ErrWitnessFormat, len(b))
	}
	return new(big.Int).SetBytes(b), nil
}

// HexFromU8s renders the revealed values of allocated bytes as lowercase
// hex. Diagnostics only; it reads assignment-side values and has no place
// in the proving-critical path.
func HexFromU8s(bs []uints.U8) string {
	out := make([]byte, len(bs))
	for i, b := range bs {
		switch v := b.Val.(type) {
		case uint8:
			out[i] = v
		case int:
			out[i] = byte(v)
		case uint64:
			out[i] = byte(v)
		case *big.Int:
			out[i] = byte(v.Uint64())
		case big.Int:
			out[i] = byte(v.Uint64())
		}
	}
	return hex.EncodeToString(out)
}

// digestToScalar recomposes a 32-byte big-endian digest into an emulated
// secp256k1 scalar.
func digestToScalar(api frontend.API, fr *emulated.Field[emulated.Secp256k1Fr], digest []uints.U8) (*emulated.Element[emulated.Secp256k1Fr], error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("%w: digest is %d bytes, want 32", ErrWitnessFormat, len(digest))
	}
	bits := make([]frontend.Variable, 256)
	for i := 0; i < 32; i++ {
		copy(bits[i*8:], api.ToBinary(digest[31-i].Val, 8))
	}
	return fr.FromBits(bits...), nil
}

// addressFromPubKey derives a 20-byte address from an uncompressed public
// key: the last 20 bytes of Keccak256(x || y), packed into one variable.
func addressFromPubKey(api frontend.API, fp *emulated.Field[emulated.Secp256k1Fp], pub *sw_emulated.AffinePoint[emulated.Secp256k1Fp]) (frontend.Variable, error) {
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return nil, err
	}
	xBits := fp.ToBits(&pub.X)
	yBits := fp.ToBits(&pub.Y)
	pkBytes := make([]uints.U8, 64)
	for i := 0; i < 32; i++ {
		pkBytes[i] = uapi.ByteValueOf(api.FromBinary(xBits[(31-i)*8 : (32-i)*8]...))
		pkBytes[32+i] = uapi.ByteValueOf(api.FromBinary(yBits[(31-i)*8 : (32-i)*8]...))
	}
	hasher, err := keccak.NewLegacyKeccak256(api)
	if err != nil {
		return nil, err
	}
	hasher.Write(pkBytes)
	digest := hasher.Sum()
	addr := frontend.Variable(0)
	for i := 12; i < 32; i++ {
		addr = api.Add(api.Mul(addr, 256), digest[i].Val)
	}
	return addr, nil
}
