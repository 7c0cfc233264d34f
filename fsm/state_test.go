package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/lib"
)

// newTestTx() wraps a message into a transaction envelope
func newTestTx(t *testing.T, msgType string, msg any, signer []byte, nonce uint64) *lib.Transaction {
	bz, err := lib.Marshal(msg)
	require.NoError(t, err)
	return &lib.Transaction{Type: msgType, Msg: bz, Signer: signer, Nonce: nonce}
}

func TestApplyTransactionTransfer(t *testing.T) {
	sm := newTestStateMachine(t)
	from, to := newTestAddress(1), newTestAddress(2)
	fund(t, sm, from, testGold, 5)
	tx := newTestTx(t, MessageTransferName, &MessageTransfer{
		To: to, TokenId: testGold, Amount: lib.NewAmountFromCoins(2),
	}, from, 1)
	require.NoError(t, sm.ApplyTransaction(tx))
	require.Equal(t, "3.00000000", balance(t, sm, from, testGold).String())
	require.Equal(t, "2.00000000", balance(t, sm, to, testGold).String())
}

func TestApplyTransactionRejectsBadEnvelope(t *testing.T) {
	sm := newTestStateMachine(t)
	signer := newTestAddress(1)
	tests := []struct {
		name   string
		detail string
		tx     *lib.Transaction
		error  lib.ErrorCode
	}{
		{
			name:   "empty signer",
			detail: "a transaction without a signer has no authorized account",
			tx:     newTestTx(t, MessageTransferName, &MessageTransfer{To: newTestAddress(2), TokenId: testGold, Amount: 1}, nil, 1),
			error:  lib.CodeAddressEmpty,
		},
		{
			name:   "short signer",
			detail: "addresses are exactly 20 bytes",
			tx:     newTestTx(t, MessageTransferName, &MessageTransfer{To: newTestAddress(2), TokenId: testGold, Amount: 1}, []byte{1, 2, 3}, 1),
			error:  lib.CodeAddressSize,
		},
		{
			name:   "unknown message type",
			detail: "the message catalogue is closed",
			tx:     newTestTx(t, "mintUnicorns", &MessageTransfer{To: newTestAddress(2), TokenId: testGold, Amount: 1}, signer, 1),
			error:  lib.CodeUnknownMessage,
		},
		{
			name:   "failed field check",
			detail: "Check() rejects a zero transfer before any state access",
			tx:     newTestTx(t, MessageTransferName, &MessageTransfer{To: newTestAddress(2), TokenId: testGold, Amount: 0}, signer, 1),
			error:  lib.CodeZeroOrNegativeAmount,
		},
		{
			name:   "native coin as pool id",
			detail: "the native coin id can never name a pool",
			tx:     newTestTx(t, MessageAddLiquidityName, &MessageAddLiquidity{PoolId: NativeTokenId, AmountA: 1, AmountB: 1}, signer, 1),
			error:  lib.CodeInvalidPoolId,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := sm.ApplyTransaction(test.tx)
			require.Error(t, err, test.detail)
			require.Equal(t, test.error, err.Code(), test.detail)
		})
	}
}

func TestApplyBlockFailingTxLeavesNoTrace(t *testing.T) {
	sm := newTestStateMachine(t)
	a, b := newTestAddress(1), newTestAddress(2)
	fund(t, sm, a, testGold, 5)
	// tx 1 is valid, tx 2 overdraws: the block must be rejected whole and
	// tx 1's mutations must not survive
	block := &lib.Block{
		BlockHeader: &lib.BlockHeader{Height: 2, Hash: lib.Hash([]byte("block"))},
		Transactions: []*lib.Transaction{
			newTestTx(t, MessageTransferName, &MessageTransfer{To: b, TokenId: testGold, Amount: lib.NewAmountFromCoins(1)}, a, 1),
			newTestTx(t, MessageTransferName, &MessageTransfer{To: b, TokenId: testGold, Amount: lib.NewAmountFromCoins(100)}, a, 2),
		},
	}
	err := sm.ApplyBlock(block)
	require.Error(t, err)
	require.Equal(t, lib.CodeInsufficientFunds, err.Code())
	// the failing tx itself left nothing behind; the caller discards the
	// whole working set on a failed block, so tx 1 is pending only
	require.Equal(t, "4.00000000", balance(t, sm, a, testGold).String())
}

func TestApplyBlockOrderLifecycle(t *testing.T) {
	sm := newTestStateMachine(t)
	owner, filler := newTestAddress(1), newTestAddress(2)
	fund(t, sm, owner, testGold, 10)
	fund(t, sm, owner, NativeTokenId, 8)
	fund(t, sm, filler, testSilver, 1)
	price, err := lib.ParseAmount("0.1")
	require.NoError(t, err)
	createTx := newTestTx(t, MessageCreateOrderName, &MessageCreateOrder{
		TokenFrom: testGold, TokenTo: testSilver, AmountFrom: lib.NewAmountFromCoins(10), OrderPrice: price,
	}, owner, 1)
	orderId, e := createTx.Hash()
	require.NoError(t, e)
	fillTx := newTestTx(t, MessageFulfillOrderName, &MessageFulfillOrder{
		OrderId: orderId, Amount: lib.NewAmountFromCoins(4),
	}, filler, 1)
	block := &lib.Block{
		BlockHeader:  &lib.BlockHeader{Height: 2, Hash: lib.Hash([]byte("block"))},
		Transactions: []*lib.Transaction{createTx, fillTx},
	}
	require.NoError(t, sm.ApplyBlock(block))
	// the order id is the creating tx hash and the fill landed in order
	order, err := sm.GetOrder(orderId)
	require.NoError(t, err)
	require.Equal(t, "6.00000000", order.AmountToFill.String())
	require.Equal(t, uint64(2882), order.ExpiryHeight)
}

func TestGenesisApplyAndExport(t *testing.T) {
	sm := newTestStateMachineBare(t)
	genesis := &GenesisState{
		Tokens: []*Token{
			{Id: 0, Symbol: "MDN", IsDAT: true},
			{Id: 1, Symbol: "GOLD", IsDAT: true},
		},
		Accounts: []*GenesisAccount{
			{Address: newTestAddress(1), TokenId: 1, Amount: lib.NewAmountFromCoins(100)},
		},
		Pools: []*GenesisPool{
			{TokenA: 0, TokenB: 1, CommissionBp: 100, Owner: newTestAddress(1)},
		},
	}
	require.NoError(t, sm.ApplyGenesisState(genesis))
	require.Equal(t, "100.00000000", balance(t, sm, newTestAddress(1), 1).String())
	// the genesis pool exists empty, its LP token taking the next id
	pool, err := sm.GetPoolByPair(0, 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, pool.Id)
	require.True(t, pool.ReserveA.IsZero())
	exported, err := sm.ExportState()
	require.NoError(t, err)
	// the two declared tokens plus the genesis pool's LP token
	require.Len(t, exported.Tokens, 3)
	require.Len(t, exported.Accounts, 1)
	require.Equal(t, genesis.Accounts[0].Amount, exported.Accounts[0].Amount)
	// a genesis declaring out of order ids is rejected
	bad := &GenesisState{Tokens: []*Token{{Id: 5, Symbol: "SKEW"}}}
	err = sm.ApplyGenesisState(bad)
	require.Error(t, err)
	require.Equal(t, lib.CodeUnmarshalGenesis, err.Code())
}

func TestGenesisFromMissingFile(t *testing.T) {
	_, err := NewGenesisFromFile(t.TempDir())
	require.Error(t, err)
	require.Equal(t, lib.CodeReadGenesisFile, err.Code())
}
