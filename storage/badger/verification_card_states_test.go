package badger

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
	"github.com/evote-ccr/control-component/utils/unittest"
)

// TestVerificationCardState_StateMachine verifies that a provisioned card starts
// with both flags unset, that flags can only be set once, and that updates are
// rejected unless the expected version matches.
func TestVerificationCardState_StateMachine(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		grp := unittest.SmallGroupFixture(t)
		cards := NewVerificationCards(db)
		states := NewVerificationCardStates(db)

		card, err := ccr.NewVerificationCard(unittest.IdentifierFixture(), unittest.IdentifierFixture(), unittest.IdentifierFixture(), grp.Generator())
		require.NoError(t, err)
		require.NoError(t, cards.Store(card))

		state, err := states.ByVerificationCardID(card.VerificationCardID)
		require.NoError(t, err)
		assert.False(t, state.PartiallyDecrypted)
		assert.False(t, state.LCCShareCreated)
		assert.Equal(t, uint64(0), state.Version)

		update := func(expectedVersion uint64, next ccr.VerificationCardState) error {
			return transaction.Update(db, states.UpdateIfVersionTx(card.VerificationCardID, expectedVersion, next))
		}

		t.Run("unchanged state should not be allowed", func(t *testing.T) {
			err := update(0, ccr.VerificationCardState{})
			require.True(t, storage.IsInvalidStateTransitionError(err))
		})

		t.Run("setting partially decrypted should be allowed", func(t *testing.T) {
			err := update(0, ccr.VerificationCardState{PartiallyDecrypted: true})
			require.NoError(t, err)
		})

		t.Run("stale version should be rejected", func(t *testing.T) {
			err := update(0, ccr.VerificationCardState{PartiallyDecrypted: true, LCCShareCreated: true})
			require.ErrorIs(t, err, storage.ErrVersionMismatch)
		})

		t.Run("setting partially decrypted twice should not be allowed", func(t *testing.T) {
			err := update(1, ccr.VerificationCardState{PartiallyDecrypted: true})
			require.True(t, storage.IsInvalidStateTransitionError(err))
		})

		t.Run("resetting a flag should not be allowed", func(t *testing.T) {
			err := update(1, ccr.VerificationCardState{LCCShareCreated: true})
			require.True(t, storage.IsInvalidStateTransitionError(err))
		})

		t.Run("setting lcc share created should be allowed", func(t *testing.T) {
			err := update(1, ccr.VerificationCardState{PartiallyDecrypted: true, LCCShareCreated: true})
			require.NoError(t, err)

			state, err := states.ByVerificationCardID(card.VerificationCardID)
			require.NoError(t, err)
			assert.True(t, state.PartiallyDecrypted)
			assert.True(t, state.LCCShareCreated)
			assert.Equal(t, uint64(2), state.Version)
		})

		t.Run("failed unit of work leaves the state untouched", func(t *testing.T) {
			other, err := ccr.NewVerificationCard(card.ElectionEventID, card.VerificationCardSetID, unittest.IdentifierFixture(), grp.Generator())
			require.NoError(t, err)
			require.NoError(t, cards.Store(other))

			failure := errors.New("step failed")
			err = transaction.Update(db, func(tx *transaction.Tx) error {
				err := states.UpdateIfVersionTx(other.VerificationCardID, 0, ccr.VerificationCardState{PartiallyDecrypted: true})(tx)
				require.NoError(t, err)
				return failure
			})
			require.ErrorIs(t, err, failure)

			state, err := states.ByVerificationCardID(other.VerificationCardID)
			require.NoError(t, err)
			assert.False(t, state.PartiallyDecrypted)
		})
	})
}

func TestVerificationCardState_UnknownCard(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		states := NewVerificationCardStates(db)

		_, err := states.ByVerificationCardID(unittest.IdentifierFixture())
		require.ErrorIs(t, err, storage.ErrNotFound)

		err = transaction.Update(db, states.UpdateIfVersionTx(unittest.IdentifierFixture(), 0, ccr.VerificationCardState{PartiallyDecrypted: true}))
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}
