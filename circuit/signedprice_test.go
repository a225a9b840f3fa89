package circuit

import (
	"crypto/ecdsa"
	"encoding/hex"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/test"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"zkprice-circuit/protocol"
)

var fixtureGuardian = common.HexToAddress("109B4a318A4F5ddcbCA6349B45f881B4137deaFB")

func avaxFixtureWitness(t *testing.T) SignedPackageWitness {
	t.Helper()
	pkg := mustDataPackage(t, []protocol.DataPoint{
		mustDataPoint(t, "AVAX", "36.2488073814028"),
	}, 1705311690000)

	sigBytes, err := hex.DecodeString("9ad1f96c083cf31f757b33b0ef6b2c4279589bf0489c1c3a7beb0005d2080dd233aaae60fdafee196362ed5b6af7498e7ba07eaa725f0bc5a041016ce54a67d61b")
	require.NoError(t, err)
	var sig [protocol.SignatureByteSize]byte
	copy(sig[:], sigBytes)

	return SignedPackageWitness{Package: pkg, Signature: sig, Guardian: fixtureGuardian}
}

func signedWitness(t *testing.T, pkg *protocol.DataPackage, key *ecdsa.PrivateKey) SignedPackageWitness {
	t.Helper()
	sig, err := protocol.Sign(pkg, key)
	require.NoError(t, err)
	return SignedPackageWitness{
		Package:   pkg,
		Signature: sig,
		Guardian:  crypto.PubkeyToAddress(key.PublicKey),
	}
}

func TestSignedPriceFixtureValidates(t *testing.T) {
	assignment, err := NewSignedPriceAssignment(1, 1, []SignedPackageWitness{avaxFixtureWitness(t)})
	require.NoError(t, err)
	require.Equal(t, 1, assignment.Valid)

	circuit := NewSignedPriceCircuit(1, 1)
	require.NoError(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))
}

func TestSignedPriceWrongGuardianIsFalse(t *testing.T) {
	w := avaxFixtureWitness(t)
	w.Guardian = common.HexToAddress("0000000000000000000000000000000000000001")

	assignment, err := NewSignedPriceAssignment(1, 1, []SignedPackageWitness{w})
	require.NoError(t, err)
	require.Equal(t, 0, assignment.Valid)

	// a mismatched signer is a provable false bit, not a failure
	circuit := NewSignedPriceCircuit(1, 1)
	require.NoError(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))
}

func TestRecoveryIDNormalization(t *testing.T) {
	ethConvention := avaxFixtureWitness(t)
	require.Equal(t, byte(27), ethConvention.Signature[64])

	canonical := ethConvention
	canonical.Signature[64] = 0

	a, err := NewSignedPriceAssignment(1, 1, []SignedPackageWitness{ethConvention})
	require.NoError(t, err)
	b, err := NewSignedPriceAssignment(1, 1, []SignedPackageWitness{canonical})
	require.NoError(t, err)

	require.Equal(t, a.Packages[0].Signature, b.Packages[0].Signature)
	require.Equal(t, 1, a.Valid)
	require.Equal(t, 1, b.Valid)
}

func TestQuorumFoldRequiresUnanimity(t *testing.T) {
	pkg := mustDataPackage(t, []protocol.DataPoint{
		mustDataPoint(t, "BTC", "20000"),
		mustDataPoint(t, "ETH", "1000"),
	}, 1654353400000)

	witnesses := make([]SignedPackageWitness, 3)
	for i := range witnesses {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		witnesses[i] = signedWitness(t, pkg, key)
	}

	all, err := NewSignedPriceAssignment(3, 2, witnesses)
	require.NoError(t, err)
	require.Equal(t, 1, all.Valid)

	circuit := NewSignedPriceCircuit(3, 2)
	require.NoError(t, test.IsSolved(circuit, all, ecc.BN254.ScalarField()))

	// flipping any single guardian makes the aggregate false
	for i := range witnesses {
		broken := make([]SignedPackageWitness, 3)
		copy(broken, witnesses)
		broken[i].Guardian = common.HexToAddress("00000000000000000000000000000000000000ff")

		assignment, err := NewSignedPriceAssignment(3, 2, broken)
		require.NoError(t, err)
		require.Equal(t, 0, assignment.Valid, "guardian %d", i)
	}

	one := make([]SignedPackageWitness, 3)
	copy(one, witnesses)
	one[1].Guardian = common.HexToAddress("00000000000000000000000000000000000000ff")
	assignment, err := NewSignedPriceAssignment(3, 2, one)
	require.NoError(t, err)
	require.NoError(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))
}

func TestUnrecoverableSignatureIsFalseNotFatal(t *testing.T) {
	w := avaxFixtureWitness(t)
	digest := w.Package.SigningDigest()

	// tamper r until no curve point matches its x coordinate
	found := false
	for i := 0; i < 256; i++ {
		sig := w.Signature
		sig[31] = byte(i)
		sig[64] -= 27
		if _, err := crypto.Ecrecover(digest[:], sig[:]); err != nil {
			sig[64] += 27
			w.Signature = sig
			found = true
			break
		}
	}
	require.True(t, found, "no unrecoverable r variant found")

	assignment, err := NewSignedPriceAssignment(1, 1, []SignedPackageWitness{w})
	require.NoError(t, err)
	require.Equal(t, 0, assignment.Valid)
	require.Equal(t, 1, assignment.Packages[0].Signature.Failed)

	circuit := NewSignedPriceCircuit(1, 1)
	require.NoError(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))
}

func TestAssignmentArityMismatch(t *testing.T) {
	_, err := NewSignedPriceAssignment(3, 1, []SignedPackageWitness{avaxFixtureWitness(t)})
	require.ErrorIs(t, err, ErrArityMismatch)
}

func TestSignedPriceProves(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Groth16 prove/verify in short mode")
	}
	assignment, err := NewSignedPriceAssignment(1, 1, []SignedPackageWitness{avaxFixtureWitness(t)})
	require.NoError(t, err)

	assert := test.NewAssert(t)
	assert.CheckCircuit(NewSignedPriceCircuit(1, 1),
		test.WithValidAssignment(assignment),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
	)
}
