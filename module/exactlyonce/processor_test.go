package exactlyonce

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"pgregory.net/rapid"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module/metrics"
	bstorage "github.com/evote-ccr/control-component/storage/badger"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
	"github.com/evote-ccr/control-component/utils/unittest"
)

func newProcessor(db *badger.DB) *Processor {
	return NewProcessor(unittest.Logger(), db, bstorage.NewCommands(db), metrics.NewNoopCollector())
}

func keyFixture(t testing.TB, context string) ccr.CommandKey {
	key, err := ccr.NewCommandKey(unittest.IdentifierFixture(), context, unittest.IdentifierFixture(), 2)
	require.NoError(t, err)
	return key
}

// countingTask returns response and counts its invocations.
func countingTask(calls *atomic.Int32, response []byte) Task {
	return func(*transaction.Tx) ([]byte, error) {
		calls.Inc()
		return response, nil
	}
}

func TestProcess_Idempotence(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		processor := newProcessor(db)

		rapid.Check(t, func(rt *rapid.T) {
			key := keyFixture(t, ccr.ContextPartialDecryptPCC)
			request := rapid.SliceOfN(rapid.Byte(), 1, 256).Draw(rt, "request")
			response := rapid.SliceOfN(rapid.Byte(), 0, 256).Draw(rt, "response")
			calls := atomic.NewInt32(0)

			first, err := processor.Process(key, request, countingTask(calls, response))
			require.NoError(rt, err)
			second, err := processor.Process(key, request, countingTask(calls, []byte("must not be returned")))
			require.NoError(rt, err)

			assert.Equal(rt, int32(1), calls.Load())
			assert.Equal(rt, first, second)
			assert.Equal(rt, len(response), len(second))
		})
	})
}

func TestProcess_Conflict(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		processor := newProcessor(db)

		rapid.Check(t, func(rt *rapid.T) {
			key := keyFixture(t, ccr.ContextCreateLCCShare)
			request := rapid.SliceOfN(rapid.Byte(), 1, 128).Draw(rt, "request")
			other := rapid.SliceOfN(rapid.Byte(), 1, 128).
				Filter(func(b []byte) bool { return string(b) != string(request) }).
				Draw(rt, "other")
			calls := atomic.NewInt32(0)

			_, err := processor.Process(key, request, countingTask(calls, []byte("response")))
			require.NoError(rt, err)

			_, err = processor.Process(key, other, countingTask(calls, []byte("response")))
			require.Error(rt, err)
			assert.True(rt, IsConflictError(err))
			assert.Equal(rt, int32(1), calls.Load())
		})
	})
}

func TestProcess_ConflictBeforeCompletion(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		processor := newProcessor(db)
		key := keyFixture(t, ccr.ContextCreateLCCShare)

		_, err := processor.Process(key, []byte("request"), func(*transaction.Tx) ([]byte, error) {
			return nil, errors.New("boom")
		})
		require.Error(t, err)

		// the request is recorded although the task failed
		lookup, err := processor.Lookup(key, []byte("other request"))
		require.NoError(t, err)
		assert.Equal(t, Conflict, lookup.Result)

		_, err = processor.Process(key, []byte("other request"), func(*transaction.Tx) ([]byte, error) {
			t.Fatal("task must not run for a conflicting request")
			return nil, nil
		})
		assert.True(t, IsConflictError(err))
	})
}

func TestProcess_FailedTaskIsRetried(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		processor := newProcessor(db)
		key := keyFixture(t, ccr.ContextPartialDecryptPCC)
		effect := []byte("task-effect")
		failure := errors.New("transient failure")

		_, err := processor.Process(key, []byte("request"), func(tx *transaction.Tx) ([]byte, error) {
			require.NoError(t, tx.DBTxn.Set(effect, []byte("first")))
			return nil, failure
		})
		require.ErrorIs(t, err, failure)

		// the effects of the failed attempt are rolled back and no response is recorded
		err = db.View(func(txn *badger.Txn) error {
			_, err := txn.Get(effect)
			return err
		})
		require.ErrorIs(t, err, badger.ErrKeyNotFound)

		lookup, err := processor.Lookup(key, []byte("request"))
		require.NoError(t, err)
		assert.Equal(t, Miss, lookup.Result)
		assert.True(t, lookup.Recorded)

		response, err := processor.Process(key, []byte("request"), func(tx *transaction.Tx) ([]byte, error) {
			return []byte("second"), tx.DBTxn.Set(effect, []byte("second"))
		})
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), response)

		lookup, err = processor.Lookup(key, []byte("request"))
		require.NoError(t, err)
		assert.Equal(t, Hit, lookup.Result)
		assert.Equal(t, []byte("second"), lookup.Response)
	})
}

// Concurrent first deliveries of the same command must all observe the
// response of the single committed execution.
func TestProcess_ConcurrentDeliveries(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		processor := newProcessor(db)
		key := keyFixture(t, ccr.ContextPartialDecryptPCC)
		counter := []byte("executions")
		deliveries := 8

		task := func(tx *transaction.Tx) ([]byte, error) {
			var executions byte
			item, err := tx.DBTxn.Get(counter)
			if err == nil {
				value, err := item.ValueCopy(nil)
				if err != nil {
					return nil, err
				}
				executions = value[0]
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return nil, err
			}
			executions++
			// every execution answers differently; only the committed one may be observed
			return []byte(unittest.IdentifierFixture()), tx.DBTxn.Set(counter, []byte{executions})
		}

		responses := make([][]byte, deliveries)
		var wg sync.WaitGroup
		for i := 0; i < deliveries; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				response, err := processor.Process(key, []byte("request"), task)
				assert.NoError(t, err)
				responses[i] = response
			}(i)
		}
		unittest.RequireReturnsBefore(t, wg.Wait, 5*time.Second)

		for _, response := range responses {
			assert.Equal(t, responses[0], response)
		}

		err := db.View(func(txn *badger.Txn) error {
			item, err := txn.Get(counter)
			if err != nil {
				return err
			}
			return item.Value(func(value []byte) error {
				assert.Equal(t, []byte{1}, value)
				return nil
			})
		})
		require.NoError(t, err)
	})
}

func TestLookup_ExactKeyMatch(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		processor := newProcessor(db)
		key := keyFixture(t, ccr.ContextPartialDecryptPCC)

		_, err := processor.Process(key, []byte("request"), func(*transaction.Tx) ([]byte, error) {
			return []byte("response"), nil
		})
		require.NoError(t, err)

		otherNode := key
		otherNode.NodeID = 3
		lookup, err := processor.Lookup(otherNode, []byte("request"))
		require.NoError(t, err)
		assert.Equal(t, Miss, lookup.Result)
		assert.False(t, lookup.Recorded)

		otherContext := key
		otherContext.Context = ccr.ContextCreateLCCShare
		lookup, err = processor.Lookup(otherContext, []byte("request"))
		require.NoError(t, err)
		assert.Equal(t, Miss, lookup.Result)
	})
}
