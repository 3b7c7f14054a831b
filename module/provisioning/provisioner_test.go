package provisioning

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module/lock"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/storage"
	bstorage "github.com/evote-ccr/control-component/storage/badger"
	"github.com/evote-ccr/control-component/utils/unittest"
)

const self = ccr.NodeID(3)

func fastLockConfig() lock.RetryConfig {
	return lock.RetryConfig{
		Timeout:        10 * time.Millisecond,
		Retries:        2,
		InitialBackoff: time.Millisecond,
		JitterPercent:  10,
	}
}

func newProvisioner(db *badger.DB, registry lock.DistributedLock, maxOptions int) (*Provisioner, *storage.All) {
	collector := metrics.NewNoopCollector()
	all := bstorage.InitAll(collector, db)
	return New(unittest.Logger(), self, maxOptions, all, registry, fastLockConfig(), collector), all
}

func TestProvisioning(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		provisioner, all := newProvisioner(db, lock.NewRegistry(), 3)
		setup := unittest.ElectionSetupFixture(t, unittest.GroupFixture(t), 3, []string{"q1", "q2"})
		vote := setup.VoteFixture(t)
		ee, vcs := setup.Event.ElectionEventID, setup.CardSet.VerificationCardSetID

		t.Run("card set of an unknown election event", func(t *testing.T) {
			err := provisioner.RegisterVerificationCardSet(setup.CardSet)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})

		require.NoError(t, provisioner.RegisterElectionEvent(setup.Event))
		require.NoError(t, provisioner.RegisterElectionEvent(setup.Event))
		require.NoError(t, provisioner.RegisterNodeKeys(setup.NodeKeys[self]))
		require.NoError(t, provisioner.RegisterVerificationCardSet(setup.CardSet))
		require.NoError(t, provisioner.RegisterVerificationCards(ee, vcs, []ccr.VerificationCard{vote.Card}))
		// re-registering the identical card is a no-op
		require.NoError(t, provisioner.RegisterVerificationCards(ee, vcs, []ccr.VerificationCard{vote.Card}))

		entries := setup.AllowListFixture(t, vote.Card, vote.PartialChoiceReturnCodes)
		require.NoError(t, provisioner.AppendAllowList(context.Background(), vcs, entries))

		keys, err := all.NodeKeys.ByElectionEventID(setup.Group, ee, self)
		require.NoError(t, err)
		assert.True(t, keys.ReturnCodesGenerationSecretKey.Equals(setup.NodeKeys[self].ReturnCodesGenerationSecretKey))

		state, err := all.VerificationCardStates.ByVerificationCardID(vote.Card.VerificationCardID)
		require.NoError(t, err)
		assert.Equal(t, ccr.VerificationCardState{}, state)

		count, err := all.AllowLists.Count(vcs)
		require.NoError(t, err)
		assert.Equal(t, uint64(len(entries)), count)

		t.Run("keys of another node", func(t *testing.T) {
			err := provisioner.RegisterNodeKeys(setup.NodeKeys[1])
			assert.True(t, ccr.IsValidationError(err))
		})

		t.Run("keys registered twice", func(t *testing.T) {
			err := provisioner.RegisterNodeKeys(setup.NodeKeys[self])
			assert.ErrorIs(t, err, storage.ErrAlreadyExists)
		})

		t.Run("changed card set", func(t *testing.T) {
			info, err := ccr.NewCombinedCorrectnessInformation([]string{"q1", "q3"})
			require.NoError(t, err)
			changed := setup.CardSet
			changed.CombinedCorrectnessInformation = info
			assert.ErrorIs(t, provisioner.RegisterVerificationCardSet(changed), storage.ErrDataMismatch)
		})

		t.Run("card set with more selections than options", func(t *testing.T) {
			info, err := ccr.NewCombinedCorrectnessInformation([]string{"q1", "q2", "q3", "q4"})
			require.NoError(t, err)
			set := ccr.VerificationCardSet{ElectionEventID: ee, VerificationCardSetID: unittest.IdentifierFixture(), CombinedCorrectnessInformation: info}
			assert.True(t, ccr.IsValidationError(provisioner.RegisterVerificationCardSet(set)))
		})

		t.Run("card registered with another key", func(t *testing.T) {
			changed := vote.Card
			changed.PublicKey = unittest.RandomElementFixture(setup.Group)
			err := provisioner.RegisterVerificationCards(ee, vcs, []ccr.VerificationCard{changed})
			assert.ErrorIs(t, err, storage.ErrDataMismatch)
		})

		t.Run("card of another set", func(t *testing.T) {
			card, err := ccr.NewVerificationCard(ee, unittest.IdentifierFixture(), unittest.IdentifierFixture(), setup.Group.Generator())
			require.NoError(t, err)
			err = provisioner.RegisterVerificationCards(ee, vcs, []ccr.VerificationCard{card})
			assert.True(t, ccr.IsValidationError(err))
		})

		t.Run("malformed allow-list entry", func(t *testing.T) {
			err := provisioner.AppendAllowList(context.Background(), vcs, []string{"not base64!"})
			assert.True(t, ccr.IsValidationError(err))
		})

		t.Run("allow-list of an unknown card set", func(t *testing.T) {
			err := provisioner.AppendAllowList(context.Background(), unittest.IdentifierFixture(), entries)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	})
}

func TestRegisterElectionEvent_MaxOptions(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		provisioner, _ := newProvisioner(db, lock.NewRegistry(), 4)
		setup := unittest.ElectionSetupFixture(t, unittest.SmallGroupFixture(t), 3, []string{"q1"})
		assert.True(t, ccr.IsValidationError(provisioner.RegisterElectionEvent(setup.Event)))
	})
}

func TestAppendAllowList_Lock(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		registry := lock.NewRegistry()
		provisioner, all := newProvisioner(db, registry, 3)
		setup := unittest.ElectionSetupFixture(t, unittest.GroupFixture(t), 3, []string{"q1", "q2", "q3"})
		vcs := setup.CardSet.VerificationCardSetID
		require.NoError(t, provisioner.RegisterElectionEvent(setup.Event))
		require.NoError(t, provisioner.RegisterVerificationCardSet(setup.CardSet))

		t.Run("held lock times out", func(t *testing.T) {
			guard, err := registry.Acquire(context.Background(), AllowListLockName(vcs), time.Second)
			require.NoError(t, err)
			defer guard.Release()

			vote := setup.VoteFixture(t)
			err = provisioner.AppendAllowList(context.Background(), vcs, setup.AllowListFixture(t, vote.Card, vote.PartialChoiceReturnCodes))
			assert.ErrorIs(t, err, lock.ErrLockTimeout)
		})

		t.Run("concurrent chunks are all appended", func(t *testing.T) {
			chunks := 8
			var wg sync.WaitGroup
			total := 0
			for i := 0; i < chunks; i++ {
				vote := setup.VoteFixture(t)
				chunk := setup.AllowListFixture(t, vote.Card, vote.PartialChoiceReturnCodes)
				total += len(chunk)
				wg.Add(1)
				go func() {
					defer wg.Done()
					config := fastLockConfig()
					config.Timeout = time.Second
					p := New(unittest.Logger(), self, 3, all, registry, config, metrics.NewNoopCollector())
					assert.NoError(t, p.AppendAllowList(context.Background(), vcs, chunk))
				}()
			}
			unittest.RequireReturnsBefore(t, wg.Wait, 10*time.Second)

			count, err := all.AllowLists.Count(vcs)
			require.NoError(t, err)
			assert.Equal(t, uint64(total), count)
		})
	})
}
