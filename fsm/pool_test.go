package fsm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/lib"
)

func TestCreatePool(t *testing.T) {
	owner := newTestAddress(1)
	tests := []struct {
		name   string
		detail string
		tokenA uint64
		tokenB uint64
		bp     uint64
		error  lib.ErrorCode
	}{
		{
			name:   "valid pair",
			detail: "a fresh unordered pair with a 1% commission creates a pool",
			tokenA: testGold, tokenB: testSilver, bp: 100,
		},
		{
			name:   "identical tokens",
			detail: "both sides of the pair are the same token",
			tokenA: testGold, tokenB: testGold, bp: 100,
			error: lib.CodeIdenticalTokens,
		},
		{
			name:   "unknown token",
			detail: "one side of the pair was never registered",
			tokenA: testGold, tokenB: 99, bp: 100,
			error: lib.CodeNoSuchToken,
		},
		{
			name:   "commission out of range",
			detail: "the commission exceeds the configured maximum basis points",
			tokenA: testGold, tokenB: testSilver, bp: 10001,
			error: lib.CodeInvalidCommission,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm := newTestStateMachine(t)
			poolId, err := sm.CreatePool(test.tokenA, test.tokenB, test.bp, owner)
			if test.error != 0 {
				require.Error(t, err, test.detail)
				require.Equal(t, test.error, err.Code(), test.detail)
				return
			}
			require.NoError(t, err, test.detail)
			pool, err := sm.GetPool(poolId)
			require.NoError(t, err)
			require.Equal(t, test.tokenA, pool.TokenA)
			require.Equal(t, test.tokenB, pool.TokenB)
			require.Equal(t, test.bp, pool.CommissionBp)
			require.True(t, pool.Active)
			require.True(t, pool.TotalLiquidity.IsZero())
			// the LP token shares the pool id and joins the pair symbols
			token, err := sm.GetToken(poolId)
			require.NoError(t, err)
			require.Equal(t, "GOLD-SILVER", token.Symbol)
		})
	}
}

func TestCreatePoolDuplicatePair(t *testing.T) {
	sm := newTestStateMachine(t)
	owner := newTestAddress(1)
	_, err := sm.CreatePool(testGold, testSilver, 100, owner)
	require.NoError(t, err)
	// the pair is unordered, so the reversed pair is the same pool
	_, err = sm.CreatePool(testSilver, testGold, 100, owner)
	require.Error(t, err)
	require.Equal(t, lib.CodePoolAlreadyExists, err.Code())
}

func TestAddLiquidityFirstDeposit(t *testing.T) {
	sm := newTestStateMachine(t)
	provider := newTestAddress(1)
	fund(t, sm, provider, testGold, 100)
	fund(t, sm, provider, testSilver, 100)
	poolId, err := sm.CreatePool(testGold, testSilver, 100, provider)
	require.NoError(t, err)
	minted, err := sm.AddLiquidity(poolId, provider, lib.NewAmountFromCoins(100), lib.NewAmountFromCoins(100))
	require.NoError(t, err)
	// floor(sqrt(100 * 100)) minus the locked minimum
	require.Equal(t, "99.99999000", minted.String())
	pool, err := sm.GetPool(poolId)
	require.NoError(t, err)
	require.Equal(t, "100.00000000", pool.TotalLiquidity.String())
	require.Equal(t, "100.00000000", pool.ReserveA.String())
	require.Equal(t, "100.00000000", pool.ReserveB.String())
	// the minted shares are an LP token balance; the minimum went to no one
	require.Equal(t, minted, balance(t, sm, provider, poolId))
	// the deposit left the provider and sits at the pool escrow
	require.True(t, balance(t, sm, provider, testGold).IsZero())
	require.True(t, balance(t, sm, provider, testSilver).IsZero())
	escrow := poolEscrowAddress(poolId)
	require.Equal(t, "100.00000000", balance(t, sm, escrow, testGold).String())
	require.Equal(t, "100.00000000", balance(t, sm, escrow, testSilver).String())
}

func TestAddLiquiditySecondDeposit(t *testing.T) {
	sm := newTestStateMachine(t)
	provider, second := newTestAddress(1), newTestAddress(2)
	poolId := fundedPool(t, sm, provider)
	fund(t, sm, second, testGold, 50)
	fund(t, sm, second, testSilver, 400)
	// against reserves (100, 100) the GOLD side binds: min(50, 400) shares
	minted, err := sm.AddLiquidity(poolId, second, lib.NewAmountFromCoins(50), lib.NewAmountFromCoins(400))
	require.NoError(t, err)
	require.Equal(t, "50.00000000", minted.String())
	pool, err := sm.GetPool(poolId)
	require.NoError(t, err)
	require.Equal(t, "150.00000000", pool.ReserveA.String())
	require.Equal(t, "500.00000000", pool.ReserveB.String())
	require.Equal(t, "150.00000000", pool.TotalLiquidity.String())
}

func TestAddLiquidityErrors(t *testing.T) {
	sm := newTestStateMachine(t)
	provider := newTestAddress(1)
	poolId := fundedPool(t, sm, provider)
	tests := []struct {
		name    string
		detail  string
		poolId  uint64
		amountA lib.Amount
		amountB lib.Amount
		error   lib.ErrorCode
	}{
		{
			name:   "zero side",
			detail: "liquidity must be supplied on both sides of the pair",
			poolId: poolId, amountA: lib.NewAmountFromCoins(10), amountB: 0,
			error: lib.CodeSingleAssetNotAllowed,
		},
		{
			name:   "unknown pool",
			detail: "the pool id was never created",
			poolId: 99, amountA: lib.NewAmountFromCoins(1), amountB: lib.NewAmountFromCoins(1),
			error: lib.CodeNoSuchPool,
		},
		{
			name:   "unfunded depositor",
			detail: "the depositor holds no balance to deposit",
			poolId: poolId, amountA: lib.NewAmountFromCoins(1), amountB: lib.NewAmountFromCoins(1),
			error: lib.CodeInsufficientFunds,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := sm.AddLiquidity(test.poolId, newTestAddress(9), test.amountA, test.amountB)
			require.Error(t, err, test.detail)
			require.Equal(t, test.error, err.Code(), test.detail)
		})
	}
}

func TestAddLiquidityFirstDepositBelowMinimum(t *testing.T) {
	sm := newTestStateMachine(t)
	provider := newTestAddress(1)
	fund(t, sm, provider, testGold, 1)
	fund(t, sm, provider, testSilver, 1)
	poolId, err := sm.CreatePool(testGold, testSilver, 100, provider)
	require.NoError(t, err)
	// sqrt(30 * 30) = 30 base units, below the locked minimum of 1000
	_, err = sm.AddLiquidity(poolId, provider, 30, 30)
	require.Error(t, err)
	require.Equal(t, lib.CodeBelowMinimumLiquidity, err.Code())
}

func TestAddLiquidityRoundsToZeroShares(t *testing.T) {
	sm := newTestStateMachine(t)
	provider, second := newTestAddress(1), newTestAddress(2)
	poolId := fundedPool(t, sm, provider)
	fund(t, sm, second, testGold, 51)
	fund(t, sm, second, testSilver, 401)
	_, err := sm.AddLiquidity(poolId, second, lib.NewAmountFromCoins(50), lib.NewAmountFromCoins(400))
	require.NoError(t, err)
	// reserves (150, 500), liquidity 150: one base unit of SILVER mints
	// floor(1 * 150e8 / 500e8) = 0 shares on the binding side
	_, err = sm.AddLiquidity(poolId, second, 1, 1)
	require.Error(t, err)
	require.Equal(t, lib.CodeInsufficientAmount, err.Code())
}

func TestRemoveLiquidity(t *testing.T) {
	sm := newTestStateMachine(t)
	provider := newTestAddress(1)
	poolId := fundedPool(t, sm, provider)
	held := balance(t, sm, provider, poolId)
	// withdraw half of the held shares
	half := held.MulDiv(1, 2)
	amountA, amountB, err := sm.RemoveLiquidity(poolId, provider, half)
	require.NoError(t, err)
	// floor proportional payout never exceeds the deposit share
	require.LessOrEqual(t, uint64(amountA), uint64(lib.NewAmountFromCoins(50)))
	require.LessOrEqual(t, uint64(amountB), uint64(lib.NewAmountFromCoins(50)))
	require.Equal(t, amountA, balance(t, sm, provider, testGold))
	require.Equal(t, amountB, balance(t, sm, provider, testSilver))
	pool, err := sm.GetPool(poolId)
	require.NoError(t, err)
	expectedA, _ := lib.NewAmountFromCoins(100).Sub(amountA)
	require.Equal(t, expectedA, pool.ReserveA)
	remaining, _ := held.Sub(half)
	require.Equal(t, remaining, balance(t, sm, provider, poolId))
}

func TestRemoveLiquidityErrors(t *testing.T) {
	sm := newTestStateMachine(t)
	provider := newTestAddress(1)
	poolId := fundedPool(t, sm, provider)
	held := balance(t, sm, provider, poolId)
	tests := []struct {
		name    string
		detail  string
		poolId  uint64
		account []byte
		shares  lib.Amount
		error   lib.ErrorCode
	}{
		{
			name:   "zero shares",
			detail: "burning zero shares is rejected before any lookup",
			poolId: poolId, account: provider, shares: 0,
			error: lib.CodeZeroOrNegativeAmount,
		},
		{
			name:   "unknown pool",
			detail: "the pool id was never created",
			poolId: 99, account: provider, shares: 1,
			error: lib.CodeNoSuchPool,
		},
		{
			name:   "more shares than held",
			detail: "a withdrawer cannot burn shares it does not hold",
			poolId: poolId, account: provider, shares: held + 1,
			error: lib.CodeAmountExceedsAvail,
		},
		{
			name:   "non holder",
			detail: "an account with no shares cannot withdraw",
			poolId: poolId, account: newTestAddress(9), shares: 1,
			error: lib.CodeAmountExceedsAvail,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := sm.RemoveLiquidity(test.poolId, test.account, test.shares)
			require.Error(t, err, test.detail)
			require.Equal(t, test.error, err.Code(), test.detail)
		})
	}
}

func TestRemoveLiquidityDrainsToMinimumFloor(t *testing.T) {
	sm := newTestStateMachine(t)
	provider := newTestAddress(1)
	poolId := fundedPool(t, sm, provider)
	// burn every held share; only the locked minimum stays behind
	held := balance(t, sm, provider, poolId)
	_, _, err := sm.RemoveLiquidity(poolId, provider, held)
	require.NoError(t, err)
	pool, err := sm.GetPool(poolId)
	require.NoError(t, err)
	require.Equal(t, "0.00001000", pool.TotalLiquidity.String())
	require.True(t, balance(t, sm, provider, poolId).IsZero())
	// the pool record persists at the floor and cannot be drained further
	_, _, err = sm.RemoveLiquidity(poolId, provider, 1)
	require.Error(t, err)
	require.Equal(t, lib.CodeAmountExceedsAvail, err.Code())
}

func TestConstantProductNeverDecreases(t *testing.T) {
	sm := newTestStateMachine(t)
	provider, second := newTestAddress(1), newTestAddress(2)
	poolId := fundedPool(t, sm, provider)
	fund(t, sm, second, testGold, 500)
	fund(t, sm, second, testSilver, 500)
	product := func() *big.Int {
		pool, err := sm.GetPool(poolId)
		require.NoError(t, err)
		a := new(big.Int).SetUint64(uint64(pool.ReserveA))
		return a.Mul(a, new(big.Int).SetUint64(uint64(pool.ReserveB)))
	}
	before := product()
	// deposits only grow the product
	_, err := sm.AddLiquidity(poolId, second, lib.NewAmountFromCoins(7), lib.NewAmountFromCoins(13))
	require.NoError(t, err)
	after := product()
	require.True(t, after.Cmp(before) >= 0)
	// a withdrawal shrinks it at most back toward the pre deposit product
	held := balance(t, sm, second, poolId)
	_, _, err = sm.RemoveLiquidity(poolId, second, held)
	require.NoError(t, err)
	require.True(t, product().Cmp(after) <= 0)
}
