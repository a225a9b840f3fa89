package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"zkprice-circuit/protocol"
)

// SignedPackageWitness is one prover-supplied triple: a plaintext data
// package, the 65-byte guardian signature over its digest, and the expected
// guardian address.
type SignedPackageWitness struct {
	Package   *protocol.DataPackage
	Signature [protocol.SignatureByteSize]byte
	Guardian  common.Address
}

// NewSignedPriceAssignment builds the full circuit assignment, including the
// expected public Valid bit, from numSigners witness triples. A witness
// count or package shape that does not match the circuit arity is a
// programmer error and aborts immediately.
func NewSignedPriceAssignment(numSigners, numDataPoints int, witnesses []SignedPackageWitness) (*SignedPriceCircuit, error) {
	if len(witnesses) != numSigners {
		return nil, fmt.Errorf("%w: got %d signed packages, want %d", ErrArityMismatch, len(witnesses), numSigners)
	}
	assignment := &SignedPriceCircuit{
		Packages:  make([]SignedDataPackage, numSigners),
		Guardians: make([]frontend.Variable, numSigners),
	}
	valid := true
	for i, w := range witnesses {
		pkg, err := newDataPackageAssignment(w.Package, numDataPoints)
		if err != nil {
			return nil, err
		}
		assignment.Packages[i] = SignedDataPackage{
			Package:   pkg,
			Signature: newSignatureAssignment(w.Package.SigningDigest(), w.Signature),
		}
		assignment.Guardians[i] = new(big.Int).SetBytes(w.Guardian.Bytes())
		signer, err := protocol.RecoverSigner(w.Package, w.Signature)
		if err != nil || signer != w.Guardian {
			valid = false
		}
	}
	if valid {
		assignment.Valid = 1
	} else {
		assignment.Valid = 0
	}
	return assignment, nil
}

func newDataPointAssignment(dp protocol.DataPoint) DataPoint {
	var out DataPoint
	for i, b := range dp.SerializeFeedID() {
		out.FeedID[i] = uints.NewU8(b)
	}
	for i, b := range dp.SerializeValue() {
		out.Value[i] = uints.NewU8(b)
	}
	return out
}

func newDataPackageAssignment(pkg *protocol.DataPackage, numDataPoints int) (DataPackage, error) {
	points := pkg.SortedDataPoints()
	if len(points) != numDataPoints {
		return DataPackage{}, fmt.Errorf("%w: package has %d data points, circuit is sized for %d", ErrArityMismatch, len(points), numDataPoints)
	}
	var out DataPackage
	out.DataPoints = make([]DataPoint, len(points))
	for i, dp := range points {
		out.DataPoints[i] = newDataPointAssignment(dp)
	}
	for i, b := range pkg.SerializeTimestamp() {
		out.Timestamp[i] = uints.NewU8(b)
	}
	for i, b := range pkg.SerializeValueByteSize() {
		out.ValueByteSize[i] = uints.NewU8(b)
	}
	for i, b := range pkg.SerializeDataPointsCount() {
		out.DataPointsCount[i] = uints.NewU8(b)
	}
	return out, nil
}

// newSignatureAssignment normalizes the recovery id from the Ethereum
// convention {27,28} to the canonical {0,1}, splits r and s into 128-bit
// halves, and computes the Failed flag by attempting recovery off-circuit.
func newSignatureAssignment(digest [32]byte, sig [protocol.SignatureByteSize]byte) Signature {
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	failed := 0
	if _, err := crypto.Ecrecover(digest[:], sig[:]); err != nil {
		failed = 1
	}
	return Signature{
		RHi:    new(big.Int).SetBytes(sig[:16]),
		RLo:    new(big.Int).SetBytes(sig[16:32]),
		SHi:    new(big.Int).SetBytes(sig[32:48]),
		SLo:    new(big.Int).SetBytes(sig[48:64]),
		V:      sig[64],
		Failed: failed,
	}
}
