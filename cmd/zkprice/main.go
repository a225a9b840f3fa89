// zkprice demo driver.
//
// Builds a fixture price update signed by three freshly generated guardian
// keys, compiles the circuit, and either checks the witness against the
// constraint system (default) or runs the full Groth16 setup/prove/verify
// cycle (-prove).
package main

import (
	"flag"
	"os"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"

	"zkprice-circuit/circuit"
	"zkprice-circuit/protocol"
)

const (
	numSigners    = 3
	numDataPoints = 2
)

func main() {
	prove := flag.Bool("prove", false, "run Groth16 setup/prove/verify instead of witness solving only")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	assignment, err := fixtureAssignment()
	if err != nil {
		log.Fatal().Err(err).Msg("building assignment")
	}
	log.Info().Int("signers", numSigners).Int("dataPoints", numDataPoints).Msg("fixture update signed")

	start := time.Now()
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit.NewSignedPriceCircuit(numSigners, numDataPoints))
	if err != nil {
		log.Fatal().Err(err).Msg("compiling circuit")
	}
	log.Info().Int("constraints", cs.GetNbConstraints()).Dur("took", time.Since(start)).Msg("circuit compiled")

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		log.Fatal().Err(err).Msg("creating witness")
	}

	if !*prove {
		if err := cs.IsSolved(witness); err != nil {
			log.Fatal().Err(err).Msg("witness does not satisfy the circuit")
		}
		log.Info().Msg("witness solved, skipping Groth16 (pass -prove for the full cycle)")
		return
	}

	start = time.Now()
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		log.Fatal().Err(err).Msg("Groth16 setup")
	}
	log.Info().Dur("took", time.Since(start)).Msg("setup done")

	start = time.Now()
	proof, err := groth16.Prove(cs, pk, witness)
	if err != nil {
		log.Fatal().Err(err).Msg("proving")
	}
	log.Info().Dur("took", time.Since(start)).Msg("proof generated")

	publicWitness, err := witness.Public()
	if err != nil {
		log.Fatal().Err(err).Msg("extracting public witness")
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		log.Fatal().Err(err).Msg("verification failed")
	}
	log.Info().Msg("proof verified")
}

// fixtureAssignment signs one BTC/ETH package per guardian and returns the
// full circuit assignment, Valid bit included.
func fixtureAssignment() (*circuit.SignedPriceCircuit, error) {
	btc, err := protocol.NewDataPoint("BTC", "20000")
	if err != nil {
		return nil, err
	}
	eth, err := protocol.NewDataPoint("ETH", "1000")
	if err != nil {
		return nil, err
	}
	pkg, err := protocol.NewDataPackage([]protocol.DataPoint{btc, eth}, uint64(time.Now().UnixMilli()))
	if err != nil {
		return nil, err
	}

	witnesses := make([]circuit.SignedPackageWitness, numSigners)
	for i := range witnesses {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		sig, err := protocol.Sign(pkg, key)
		if err != nil {
			return nil, err
		}
		witnesses[i] = circuit.SignedPackageWitness{
			Package:   pkg,
			Signature: sig,
			Guardian:  crypto.PubkeyToAddress(key.PublicKey),
		}
	}
	return circuit.NewSignedPriceAssignment(numSigners, numDataPoints, witnesses)
}
