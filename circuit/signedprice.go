package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
)

// SignedPriceCircuit aggregates N independently signed packages against N
// guardian addresses and exposes a single validity bit. The quorum policy is
// unanimous: every one of the N per-signer checks must pass. The guardian
// addresses and the validity bit are public; everything else is witness.
type SignedPriceCircuit struct {
	Packages  []SignedDataPackage
	Guardians []frontend.Variable `gnark:",public"`
	Valid     frontend.Variable   `gnark:",public"`
}

// NewSignedPriceCircuit returns the circuit shape for numSigners signed
// packages of numDataPoints data points each. The arity is fixed here, at
// circuit compile time; assignments of any other shape are rejected.
func NewSignedPriceCircuit(numSigners, numDataPoints int) *SignedPriceCircuit {
	packages := make([]SignedDataPackage, numSigners)
	for i := range packages {
		packages[i].Package.DataPoints = make([]DataPoint, numDataPoints)
	}
	return &SignedPriceCircuit{
		Packages:  packages,
		Guardians: make([]frontend.Variable, numSigners),
	}
}

// Define folds the N per-signer validity bits with logical AND, in fixed
// index order for deterministic constraint accounting, and constrains the
// fold to the public Valid bit. The result stays a value: an invalid
// signature or a wrong signer makes Valid false without revealing which
// check failed.
func (c *SignedPriceCircuit) Define(api frontend.API) error {
	if len(c.Guardians) != len(c.Packages) {
		return fmt.Errorf("%w: %d guardians for %d packages", ErrArityMismatch, len(c.Guardians), len(c.Packages))
	}
	valid := frontend.Variable(1)
	for i := range c.Packages {
		ok, err := c.Packages[i].CheckByAddress(api, c.Guardians[i])
		if err != nil {
			return err
		}
		valid = api.And(valid, ok)
	}
	api.AssertIsEqual(valid, c.Valid)
	return nil
}
