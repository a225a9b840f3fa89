package protocol

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sign produces a 65-byte recoverable signature (r || s || v, v in {0,1})
// over the package signing digest.
func Sign(pkg *DataPackage, key *ecdsa.PrivateKey) ([SignatureByteSize]byte, error) {
	var out [SignatureByteSize]byte
	digest := pkg.SigningDigest()
	sig, err := crypto.Sign(digest[:], key)
	if err != nil {
		return out, fmt.Errorf("sign data package: %w", err)
	}
	copy(out[:], sig)
	return out, nil
}

// RecoverSigner recovers the guardian address that signed the package. The
// recovery id is accepted in either the Ethereum convention {27,28} or the
// canonical {0,1} and normalized before use. This is the off-circuit
// reference the in-circuit check must agree with bit-for-bit.
func RecoverSigner(pkg *DataPackage, sig [SignatureByteSize]byte) (common.Address, error) {
	if sig[SignatureByteSize-1] >= 27 {
		sig[SignatureByteSize-1] -= 27
	}
	digest := pkg.SigningDigest()
	pub, err := crypto.SigToPub(digest[:], sig[:])
	if err != nil {
		return common.Address{}, fmt.Errorf("recover package signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
