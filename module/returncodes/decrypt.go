package returncodes

import (
	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/model/ccr"
)

// DecryptPCC combines this node's exponentiated gammas with those of the other
// three nodes, given in ascending node id order, and strips the combined
// decryption factor from E2: pCC_i = E2.phi_i / (d_self,i * d_1,i * d_2,i * d_3,i).
//
// The exponentiation proofs of the other nodes are not verified: their public
// keys are not distributed to this node yet. Callers only pass contributions
// that were received over an authenticated channel.
// Expected errors during normal operations:
//   - ccr.ValidationError if the input is malformed
func DecryptPCC(ctx ccr.EncryptionContext, own []group.GqElement, others [][]group.GqElement, e2 elgamal.Ciphertext) ([]group.GqElement, error) {
	if err := ctx.CheckCiphertext("encrypted partial choice return codes", e2); err != nil {
		return nil, err
	}
	psi := e2.Size()
	if len(others) != ccr.NumberOfNodes-1 {
		return nil, ccr.NewValidationErrorf("expected exponentiated gammas of %d other nodes, got %d", ccr.NumberOfNodes-1, len(others))
	}
	if len(own) != psi {
		return nil, ccr.NewValidationErrorf("own exponentiated gammas have length %d, expected %d", len(own), psi)
	}
	if err := ctx.CheckElements("own exponentiated gammas", own...); err != nil {
		return nil, err
	}
	for j, gammas := range others {
		if len(gammas) != psi {
			return nil, ccr.NewValidationErrorf("exponentiated gammas of other node %d have length %d, expected %d", j, len(gammas), psi)
		}
		if err := ctx.CheckElements("other exponentiated gammas", gammas...); err != nil {
			return nil, err
		}
	}

	decrypted := make([]group.GqElement, 0, psi)
	for i := 0; i < psi; i++ {
		d := own[i]
		for _, gammas := range others {
			d = d.Multiply(gammas[i])
		}
		decrypted = append(decrypted, e2.Phi(i).Divide(d))
	}
	return decrypted, nil
}
