// circuit.go - Groth16 circuit proving a well-formed encrypted balance.
//
// The prover knows (balance, r) with balance < 2^32 such that
//
//	Left  = r·G
//	Right = balance·G + r·Recipient
//
// over Jubjub, where G is the ElGamal generator fixed at compile time. The
// native field of the proof system is the BLS12-381 scalar field, which is
// Jubjub's base field, so curve arithmetic needs no emulation.

package circuit

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"

	"zerochain/internal/elgamal"
	"zerochain/internal/jubjub"
)

// BalanceBits bounds the committed balance. It matches elgamal.MaxBalance.
const BalanceBits = 32

// Curve is the pairing curve of the proof system.
const Curve = ecc.BLS12_381

// BalanceCircuit is the constraint system for one encrypted balance.
type BalanceCircuit struct {
	// Public inputs
	Recipient twistededwards.Point `gnark:",public"`
	Left      twistededwards.Point `gnark:",public"`
	Right     twistededwards.Point `gnark:",public"`

	// Private inputs
	Balance    frontend.Variable
	Randomness frontend.Variable

	// Generator coordinates, baked in as constants.
	Generator [2]*big.Int `gnark:"-"`
}

// NewBalanceCircuit returns the circuit definition for the ElGamal generator
// of params.
func NewBalanceCircuit(params *jubjub.Params) *BalanceCircuit {
	x, y := params.ElGamal().Point().Coordinates()
	return &BalanceCircuit{Generator: [2]*big.Int{x, y}}
}

func (c *BalanceCircuit) Define(api frontend.API) error {
	curve, err := twistededwards.NewEdCurve(api, tedwards.BLS12_381)
	if err != nil {
		return err
	}
	g := twistededwards.Point{X: c.Generator[0], Y: c.Generator[1]}

	curve.AssertIsOnCurve(c.Recipient)
	curve.AssertIsOnCurve(c.Left)
	curve.AssertIsOnCurve(c.Right)

	// balance < 2^32
	api.ToBinary(c.Balance, BalanceBits)

	left := curve.ScalarMul(g, c.Randomness)
	api.AssertIsEqual(c.Left.X, left.X)
	api.AssertIsEqual(c.Left.Y, left.Y)

	right := curve.DoubleBaseScalarMul(g, c.Recipient, c.Balance, c.Randomness)
	api.AssertIsEqual(c.Right.X, right.X)
	api.AssertIsEqual(c.Right.Y, right.Y)

	return nil
}

// Assign builds a full witness for ct.
func Assign(ct elgamal.Ciphertext, recipient jubjub.Point, balance uint32, r jubjub.Scalar) *BalanceCircuit {
	w := PublicAssignment(ct, recipient)
	w.Balance = uint64(balance)
	w.Randomness = r.BigInt()
	return w
}

// PublicAssignment builds the public part of a witness, as a verifier sees
// it. The private inputs are zeroed.
func PublicAssignment(ct elgamal.Ciphertext, recipient jubjub.Point) *BalanceCircuit {
	return &BalanceCircuit{
		Recipient:  toGnarkPoint(recipient),
		Left:       toGnarkPoint(ct.Left),
		Right:      toGnarkPoint(ct.Right),
		Balance:    0,
		Randomness: 0,
	}
}

// Compile builds the R1CS for params.
func Compile(params *jubjub.Params) (constraint.ConstraintSystem, error) {
	return frontend.Compile(Curve.ScalarField(), r1cs.NewBuilder, NewBalanceCircuit(params))
}

// toGnarkPoint converts a native Jubjub point to circuit form.
func toGnarkPoint(p jubjub.Point) twistededwards.Point {
	x, y := p.Coordinates()
	return twistededwards.Point{X: x, Y: y}
}
