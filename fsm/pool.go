package fsm

import (
	"github.com/meridian-network/meridian/lib"
)

/*
	Constant product liquidity pools. A pool is created once per unordered
	token pair and never deleted; its reserves are held at a derived escrow
	address and its LP shares are plain balances on a synthetic token that
	shares the pool's id. Every division floors, so rounding error always
	accrues to the pool, never to the individual depositor or withdrawer.
*/

// Pool is a constant product liquidity pool over one token pair
type Pool struct {
	Id             uint64       `json:"id"` // doubles as the LP token id
	TokenA         uint64       `json:"tokenA"`
	TokenB         uint64       `json:"tokenB"`
	ReserveA       lib.Amount   `json:"reserveA"`
	ReserveB       lib.Amount   `json:"reserveB"`
	TotalLiquidity lib.Amount   `json:"totalLiquidity"` // outstanding LP shares plus the locked minimum
	CommissionBp   uint64       `json:"commissionBp"`
	Owner          lib.HexBytes `json:"owner"`
	Active         bool         `json:"active"`
}

// CreatePool() registers a pool for an unordered token pair; the pool id is
// the id of the LP token minted for it
func (s *StateMachine) CreatePool(tokenA, tokenB, commissionBp uint64, owner []byte) (uint64, lib.ErrorI) {
	if tokenA == tokenB {
		return 0, ErrIdenticalTokens(tokenA)
	}
	if commissionBp > s.Config.MaxCommissionBp {
		return 0, ErrInvalidCommission(commissionBp)
	}
	a, err := s.GetToken(tokenA)
	if err != nil {
		return 0, err
	}
	b, err := s.GetToken(tokenB)
	if err != nil {
		return 0, err
	}
	// one pool per unordered pair, forever
	pairKey := KeyForPoolPair(tokenA, tokenB)
	existing, err := s.Get(pairKey)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrPoolAlreadyExists(tokenA, tokenB)
	}
	// the LP token carries the joined pair symbols
	poolId, err := s.CreateToken(a.Symbol+"-"+b.Symbol, false)
	if err != nil {
		return 0, err
	}
	pool := &Pool{
		Id:           poolId,
		TokenA:       tokenA,
		TokenB:       tokenB,
		CommissionBp: commissionBp,
		Owner:        owner,
		Active:       true,
	}
	if err = s.SetObject(KeyForPool(poolId), pool); err != nil {
		return 0, err
	}
	if err = s.Set(pairKey, lib.FormatUint64(poolId)); err != nil {
		return 0, err
	}
	return poolId, nil
}

// GetPool() loads a pool record by id
func (s *StateMachine) GetPool(id uint64) (*Pool, lib.ErrorI) {
	pool := new(Pool)
	found, err := s.GetObject(KeyForPool(id), pool)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSuchPool(id)
	}
	return pool, nil
}

// GetPoolByPair() resolves the pool for an unordered token pair
func (s *StateMachine) GetPoolByPair(tokenA, tokenB uint64) (*Pool, lib.ErrorI) {
	bz, err := s.Get(KeyForPoolPair(tokenA, tokenB))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, ErrNoSuchPool(0)
	}
	return s.GetPool(uint64FromBytes(bz))
}

// ListPools() returns every pool record ordered by id
func (s *StateMachine) ListPools() (pools []*Pool, err lib.ErrorI) {
	err = s.IterateAndExecute(PoolPrefix(), func(_, value []byte) lib.ErrorI {
		pool := new(Pool)
		if e := lib.Unmarshal(value, pool); e != nil {
			return e
		}
		pools = append(pools, pool)
		return nil
	})
	return
}

// AddLiquidity() deposits both sides of the pair and mints LP shares.
// The first deposit mints floor(sqrt(a*b)) minus the minimum liquidity,
// which stays locked in TotalLiquidity and is credited to no one. Later
// deposits mint floor(min(a*L/rA, b*L/rB)); the reserves always grow by the
// full deposited amounts, so value supplied above the pool ratio is kept by
// the pool rather than refunded.
func (s *StateMachine) AddLiquidity(poolId uint64, account []byte, amountA, amountB lib.Amount) (minted lib.Amount, err lib.ErrorI) {
	if amountA.IsZero() || amountB.IsZero() {
		return 0, ErrSingleAssetNotAllowed()
	}
	pool, err := s.GetPool(poolId)
	if err != nil {
		return 0, err
	}
	if !pool.Active {
		return 0, ErrPoolNotActive(poolId)
	}
	escrow := poolEscrowAddress(poolId)
	if err = s.Transfer(account, escrow, pool.TokenA, amountA); err != nil {
		return 0, err
	}
	if err = s.Transfer(account, escrow, pool.TokenB, amountB); err != nil {
		return 0, err
	}
	if pool.TotalLiquidity.IsZero() {
		// genesis deposit: geometric mean, minimum locked forever
		shares := lib.SqrtProduct(amountA, amountB)
		minimum := s.Config.MinimumLiquidity
		minted, _ = shares.Sub(minimum)
		if minted.IsZero() {
			return 0, ErrBelowMinimumLiquidity(minimum)
		}
		pool.TotalLiquidity = shares
	} else {
		sharesA := amountA.MulDiv(pool.TotalLiquidity, pool.ReserveA)
		sharesB := amountB.MulDiv(pool.TotalLiquidity, pool.ReserveB)
		minted = sharesA
		if sharesB < minted {
			minted = sharesB
		}
		if minted.IsZero() {
			return 0, ErrInsufficientAmount()
		}
		total, ok := pool.TotalLiquidity.Add(minted)
		if !ok {
			return 0, lib.ErrAmountOverflow(minted.String())
		}
		pool.TotalLiquidity = total
	}
	reserveA, okA := pool.ReserveA.Add(amountA)
	reserveB, okB := pool.ReserveB.Add(amountB)
	if !okA || !okB {
		return 0, lib.ErrAmountOverflow(amountA.String())
	}
	pool.ReserveA, pool.ReserveB = reserveA, reserveB
	if err = s.BalanceAdd(account, pool.Id, minted); err != nil {
		return 0, err
	}
	return minted, s.SetObject(KeyForPool(poolId), pool)
}

// RemoveLiquidity() burns LP shares and pays out the floor proportional cut
// of each reserve. The locked minimum can never be withdrawn, so
// TotalLiquidity never reaches zero once a pool has been funded.
func (s *StateMachine) RemoveLiquidity(poolId uint64, account []byte, shares lib.Amount) (amountA, amountB lib.Amount, err lib.ErrorI) {
	if shares.IsZero() {
		return 0, 0, ErrZeroOrNegativeAmount()
	}
	pool, err := s.GetPool(poolId)
	if err != nil {
		return 0, 0, err
	}
	held, err := s.GetBalance(account, pool.Id)
	if err != nil {
		return 0, 0, err
	}
	if shares > held {
		return 0, 0, ErrAmountExceedsAvailable(shares, held)
	}
	remaining, ok := pool.TotalLiquidity.Sub(shares)
	if !ok || remaining < s.Config.MinimumLiquidity {
		return 0, 0, ErrBelowMinimumLiquidity(s.Config.MinimumLiquidity)
	}
	amountA = shares.MulDiv(pool.ReserveA, pool.TotalLiquidity)
	amountB = shares.MulDiv(pool.ReserveB, pool.TotalLiquidity)
	if amountA.IsZero() && amountB.IsZero() {
		return 0, 0, ErrInsufficientAmount()
	}
	if err = s.BalanceSub(account, pool.Id, shares); err != nil {
		return 0, 0, err
	}
	escrow := poolEscrowAddress(poolId)
	if !amountA.IsZero() {
		if err = s.Transfer(escrow, account, pool.TokenA, amountA); err != nil {
			return 0, 0, err
		}
	}
	if !amountB.IsZero() {
		if err = s.Transfer(escrow, account, pool.TokenB, amountB); err != nil {
			return 0, 0, err
		}
	}
	pool.ReserveA, _ = pool.ReserveA.Sub(amountA)
	pool.ReserveB, _ = pool.ReserveB.Sub(amountB)
	pool.TotalLiquidity = remaining
	return amountA, amountB, s.SetObject(KeyForPool(poolId), pool)
}
