// Package jubjub wraps the Jubjub twisted Edwards curve (defined over the
// BLS12-381 scalar field) for the confidential balance layer.
//
// Overview:
//   - Point and Scalar value types with the arithmetic the key hierarchy and
//     the balance cipher need
//   - Params, the read-only curve context: curve constants plus one fixed
//     generator per role, built once and shared by reference
//   - Role-typed generators (spend authorization, nullifier, ElGamal,
//     diversifier) so a generator cannot be used outside its role
//
// Security Model:
//   - Generators come from a group hash over fixed personalization tags, so
//     no discrete log relation between them is known
//   - Every point decoded from bytes is checked to be on the curve and in the
//     prime-order subgroup before it is handed out
//
// Curve arithmetic is provided by gnark-crypto
// (github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards).
package jubjub
