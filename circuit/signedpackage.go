package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	"github.com/consensys/gnark/std/evmprecompiles"
	"github.com/consensys/gnark/std/math/bitslice"
	"github.com/consensys/gnark/std/math/emulated"
)

// Signature holds the allocated components of a 65-byte recoverable
// signature: r and s split into 128-bit halves, the recovery id already
// normalized to {0,1}, and a Failed flag set at witness time when recovery
// cannot succeed for the given digest and signature. The recovery gadget
// verifies the flag in-circuit, so a prover cannot lie about it.
type Signature struct {
	RHi, RLo frontend.Variable
	SHi, SLo frontend.Variable
	V        frontend.Variable
	Failed   frontend.Variable
}

// SignedDataPackage couples a data package with the signature claimed to
// cover it.
type SignedDataPackage struct {
	Package   DataPackage
	Signature Signature
}

// Recover hashes the package and runs ECDSA public-key recovery against the
// digest. It returns a success bit and the recovered affine point. A
// malformed signature (e.g. an r with no matching curve point) makes the
// success bit false; it never fails the constraint system.
func (sp *SignedDataPackage) Recover(api frontend.API) (frontend.Variable, *sw_emulated.AffinePoint[emulated.Secp256k1Fp], error) {
	frField, err := emulated.NewField[emulated.Secp256k1Fr](api)
	if err != nil {
		return nil, nil, err
	}
	digest, err := sp.Package.Hash(api)
	if err != nil {
		return nil, nil, err
	}
	msg, err := digestToScalar(api, frField, digest)
	if err != nil {
		return nil, nil, err
	}

	rLimbs := make([]frontend.Variable, 4)
	rLimbs[2], rLimbs[3] = bitslice.Partition(api, sp.Signature.RHi, 64, bitslice.WithNbDigits(128))
	rLimbs[0], rLimbs[1] = bitslice.Partition(api, sp.Signature.RLo, 64, bitslice.WithNbDigits(128))
	r := frField.NewElement(rLimbs)
	sLimbs := make([]frontend.Variable, 4)
	sLimbs[2], sLimbs[3] = bitslice.Partition(api, sp.Signature.SHi, 64, bitslice.WithNbDigits(128))
	sLimbs[0], sLimbs[1] = bitslice.Partition(api, sp.Signature.SLo, 64, bitslice.WithNbDigits(128))
	s := frField.NewElement(sLimbs)

	api.AssertIsBoolean(sp.Signature.V)
	api.AssertIsBoolean(sp.Signature.Failed)

	// The recovery gadget expects the Ethereum convention {27,28}; the
	// witness carries the canonical {0,1}. strictRange is off to match the
	// EVM precompile, which accepts any s in [1, n-1].
	vPlus27 := api.Add(sp.Signature.V, 27)
	pub := evmprecompiles.ECRecover(api, *msg, vPlus27, *r, *s, 0, sp.Signature.Failed)
	success := api.Sub(1, sp.Signature.Failed)
	return success, pub, nil
}

// CheckByAddress derives the candidate guardian address from the recovered
// public key and compares it to the expected guardian. The result is the
// per-signer validity bit: recovery succeeded AND the addresses match. A
// wrong signer yields a false bit, never an abort.
func (sp *SignedDataPackage) CheckByAddress(api frontend.API, guardian frontend.Variable) (frontend.Variable, error) {
	success, pub, err := sp.Recover(api)
	if err != nil {
		return nil, err
	}
	fpField, err := emulated.NewField[emulated.Secp256k1Fp](api)
	if err != nil {
		return nil, err
	}
	candidate, err := addressFromPubKey(api, fpField, pub)
	if err != nil {
		return nil, err
	}
	matches := api.IsZero(api.Sub(candidate, guardian))
	return api.And(matches, success), nil
}
