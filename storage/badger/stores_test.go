package badger

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
	"github.com/evote-ccr/control-component/utils/unittest"
)

func TestCommands(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		commands := NewCommands(db)
		key, err := ccr.NewCommandKey("context", ccr.ContextCreateLCCShare, "correlation", 3)
		require.NoError(t, err)

		_, err = commands.ByKey(key)
		require.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, commands.InsertRequest(key, []byte("request")))
		require.ErrorIs(t, commands.InsertRequest(key, []byte("request")), storage.ErrAlreadyExists)

		command, err := commands.ByKey(key)
		require.NoError(t, err)
		assert.False(t, command.IsCompleted())

		err = transaction.Update(db, commands.CompleteTx(key, []byte("other"), []byte("response")))
		require.ErrorIs(t, err, storage.ErrDataMismatch)

		err = transaction.Update(db, commands.CompleteTx(key, []byte("request"), []byte("response")))
		require.NoError(t, err)

		err = transaction.Update(db, commands.CompleteTx(key, []byte("request"), []byte("response")))
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		command, err = commands.ByKey(key)
		require.NoError(t, err)
		assert.True(t, command.IsCompleted())
		assert.Equal(t, []byte("response"), command.ResponsePayload)
		assert.False(t, command.CompletedAt.Before(command.CreatedAt))
	})
}

func TestElectionEventsAndNodeKeys(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		setup := unittest.ElectionSetupFixture(t, unittest.GroupFixture(t), 3, []string{"q1", "q2", "q3"})
		events := NewElectionEvents(metrics.NewNoopCollector(), db)
		keys := NewNodeKeys(db)

		require.NoError(t, events.Store(setup.Event))
		require.NoError(t, events.Store(setup.Event))

		// a fresh store reads through to the database
		stored, err := NewElectionEvents(metrics.NewNoopCollector(), db).ByID(setup.Event.ElectionEventID)
		require.NoError(t, err)
		assert.True(t, stored.Group.Equals(setup.Group))
		assert.Equal(t, setup.MaxOptions, stored.MaxOptions())
		assert.True(t, stored.ElectionPublicKey[0].Equals(setup.Event.ElectionPublicKey[0]))

		_, err = events.ByID(unittest.IdentifierFixture())
		require.ErrorIs(t, err, storage.ErrNotFound)

		own := setup.NodeKeys[2]
		require.NoError(t, keys.Store(own))
		require.ErrorIs(t, keys.Store(own), storage.ErrAlreadyExists)

		actual, err := keys.ByElectionEventID(setup.Group, own.ElectionEventID, own.NodeID)
		require.NoError(t, err)
		assert.True(t, actual.ChoiceReturnCodesEncryptionKeyPair.Matches())
		assert.True(t, actual.ReturnCodesGenerationSecretKey.Equals(own.ReturnCodesGenerationSecretKey))

		_, err = keys.ByElectionEventID(setup.Group, own.ElectionEventID, 1)
		require.ErrorIs(t, err, storage.ErrNotFound)

		// decoding requires the group the keys were created in
		_, err = keys.ByElectionEventID(unittest.SmallGroupFixture(t), own.ElectionEventID, own.NodeID)
		require.Error(t, err)
	})
}

func TestVerificationCardSets(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		sets := NewVerificationCardSets(metrics.NewNoopCollector(), db)
		info, err := ccr.NewCombinedCorrectnessInformation([]string{"q1", "q2"})
		require.NoError(t, err)
		set := ccr.VerificationCardSet{
			ElectionEventID:                unittest.IdentifierFixture(),
			VerificationCardSetID:          unittest.IdentifierFixture(),
			CombinedCorrectnessInformation: info,
		}
		require.NoError(t, sets.Store(set))
		require.NoError(t, sets.Store(set))

		changedInfo, err := ccr.NewCombinedCorrectnessInformation([]string{"q1"})
		require.NoError(t, err)
		changed := set
		changed.CombinedCorrectnessInformation = changedInfo
		require.ErrorIs(t, sets.Store(changed), storage.ErrDataMismatch)

		actual, err := NewVerificationCardSets(metrics.NewNoopCollector(), db).ByID(set.VerificationCardSetID)
		require.NoError(t, err)
		assert.Equal(t, 2, actual.CombinedCorrectnessInformation.Psi())
	})
}

func TestAllowLists(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		allowLists := NewAllowLists(db)
		vcs := unittest.IdentifierFixture()

		entries := make([]string, 0, maxEntriesPerTx+10)
		for i := 0; i < maxEntriesPerTx+10; i++ {
			entries = append(entries, unittest.IdentifierFixture())
		}
		require.NoError(t, allowLists.Append(vcs, entries[:500]))
		// overlapping chunks never duplicate entries
		require.NoError(t, allowLists.Append(vcs, entries[400:]))

		count, err := allowLists.Count(vcs)
		require.NoError(t, err)
		assert.Equal(t, uint64(len(entries)), count)

		contains, err := allowLists.Contains(vcs, entries[maxEntriesPerTx+5])
		require.NoError(t, err)
		assert.True(t, contains)

		contains, err = allowLists.Contains(unittest.IdentifierFixture(), entries[0])
		require.NoError(t, err)
		assert.False(t, contains)
	})
}

func TestContributions(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		grp := unittest.GroupFixture(t)
		zq := grp.ZqGroup()
		contributions := NewContributions(db)
		vc := unittest.IdentifierFixture()

		contribution := func(node ccr.NodeID) ccr.PartialDecryptionContribution {
			proof, err := zkp.NewExponentiationProof(group.RandomZqElement(zq), group.RandomZqElement(zq))
			require.NoError(t, err)
			c, err := ccr.NewPartialDecryptionContribution(node, []group.GqElement{unittest.RandomElementFixture(grp)}, []zkp.ExponentiationProof{proof})
			require.NoError(t, err)
			return c
		}

		second := contribution(2)
		require.NoError(t, transaction.Update(db, contributions.StoreTx(vc, second)))
		require.NoError(t, transaction.Update(db, contributions.StoreTx(vc, second)))
		require.NoError(t, transaction.Update(db, contributions.StoreTx(vc, contribution(1))))

		err := transaction.Update(db, contributions.StoreTx(vc, contribution(2)))
		require.ErrorIs(t, err, storage.ErrDataMismatch)

		actual, err := contributions.ByNode(grp, vc, 2)
		require.NoError(t, err)
		assert.True(t, actual.Equals(second))

		all, err := contributions.ByVerificationCardID(grp, vc)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, ccr.NodeID(1), all[0].NodeID)
		assert.Equal(t, ccr.NodeID(2), all[1].NodeID)

		_, err = contributions.ByNode(grp, vc, 4)
		require.ErrorIs(t, err, storage.ErrNotFound)

		t.Run("read within the unit of work", func(t *testing.T) {
			third := contribution(3)
			var read ccr.PartialDecryptionContribution
			err := transaction.Update(db, func(tx *transaction.Tx) error {
				if err := contributions.StoreTx(vc, third)(tx); err != nil {
					return err
				}
				return contributions.ByNodeTx(grp, vc, 3, &read)(tx)
			})
			require.NoError(t, err)
			assert.True(t, read.Equals(third), "uncommitted write of the same transaction must be visible")

			var missing ccr.PartialDecryptionContribution
			err = transaction.View(db, contributions.ByNodeTx(grp, vc, 4, &missing))
			require.ErrorIs(t, err, storage.ErrNotFound)
		})
	})
}

func TestCache(t *testing.T) {
	calls := 0
	cache := newCache[string, int](metrics.NewNoopCollector(), "test",
		withLimit[string, int](2),
		withRetrieve(func(key string) (int, error) {
			calls++
			if key == "missing" {
				return 0, storage.ErrNotFound
			}
			return len(key), nil
		}))

	v, err := cache.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	_, err = cache.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = cache.Get("missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = cache.Get("missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 3, calls, "errors must not be cached")

	cache.Insert("x", 42)
	v, err = cache.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
