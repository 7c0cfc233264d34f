package fsm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/store"
)

const (
	testGold   = 1
	testSilver = 2
)

// newTestStateMachine() returns a state machine over an ephemeral store with
// the native coin, GOLD, and SILVER registered
func newTestStateMachine(t *testing.T) *StateMachine {
	db, err := store.NewTestStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sm := New(lib.DefaultConfig(), db, lib.NewNullLogger())
	sm.height = 2
	for i, symbol := range []string{"MDN", "GOLD", "SILVER"} {
		id, e := sm.CreateToken(symbol, true)
		require.NoError(t, e)
		require.EqualValues(t, i, id)
	}
	return sm
}

// newTestStateMachineBare() returns a state machine over an ephemeral store
// with no tokens registered, for genesis tests
func newTestStateMachineBare(t *testing.T) *StateMachine {
	db, err := store.NewTestStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sm := New(lib.DefaultConfig(), db, lib.NewNullLogger())
	sm.height = 1
	return sm
}

// newTestAddress() returns a deterministic 20 byte address
func newTestAddress(n byte) []byte { return bytes.Repeat([]byte{n}, AddressSize) }

// fund() credits an address with whole coins of a token
func fund(t *testing.T, sm *StateMachine, address []byte, tokenId, coins uint64) {
	require.NoError(t, sm.BalanceAdd(address, tokenId, lib.NewAmountFromCoins(coins)))
}

// balance() reads a balance or fails the test
func balance(t *testing.T, sm *StateMachine, address []byte, tokenId uint64) lib.Amount {
	amount, err := sm.GetBalance(address, tokenId)
	require.NoError(t, err)
	return amount
}

// fundedPool() creates a GOLD/SILVER pool seeded with (100, 100) coins from
// the given provider and returns the pool id
func fundedPool(t *testing.T, sm *StateMachine, provider []byte) uint64 {
	fund(t, sm, provider, testGold, 100)
	fund(t, sm, provider, testSilver, 100)
	poolId, err := sm.CreatePool(testGold, testSilver, 100, provider)
	require.NoError(t, err)
	_, err = sm.AddLiquidity(poolId, provider, lib.NewAmountFromCoins(100), lib.NewAmountFromCoins(100))
	require.NoError(t, err)
	return poolId
}
