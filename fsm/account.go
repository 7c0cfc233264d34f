package fsm

import (
	"github.com/meridian-network/meridian/lib"
)

/*
	Balances are explicit ledger entries keyed (address, token id). Every
	movement of funds in the system, user transfers, pool deposits and
	withdrawals, order escrow and fills, runs through Transfer() so the
	debit and the credit always land together.

	Pool reserves and order escrow are held at derived module addresses:
	funds a user parts with remain visible as balance entries owned by the
	pool or order, which keeps the sum of all balances per token constant
	under every engine operation.
*/

// GetBalance() returns the balance of (address, tokenId); absent entries read as zero
func (s *StateMachine) GetBalance(address []byte, tokenId uint64) (lib.Amount, lib.ErrorI) {
	bz, err := s.Get(KeyForBalance(address, tokenId))
	if err != nil {
		return 0, err
	}
	if bz == nil {
		return 0, nil
	}
	return lib.Amount(uint64FromBytes(bz)), nil
}

// setBalance() writes a balance entry, deleting it at zero
func (s *StateMachine) setBalance(address []byte, tokenId uint64, amount lib.Amount) lib.ErrorI {
	key := KeyForBalance(address, tokenId)
	if amount.IsZero() {
		return s.Delete(key)
	}
	return s.Set(key, lib.FormatUint64(uint64(amount)))
}

// BalanceAdd() credits an address with an amount of a token
func (s *StateMachine) BalanceAdd(address []byte, tokenId uint64, amount lib.Amount) lib.ErrorI {
	balance, err := s.GetBalance(address, tokenId)
	if err != nil {
		return err
	}
	sum, ok := balance.Add(amount)
	if !ok {
		return lib.ErrAmountOverflow(amount.String())
	}
	return s.setBalance(address, tokenId, sum)
}

// BalanceSub() debits an address; fails when the held balance is exceeded
func (s *StateMachine) BalanceSub(address []byte, tokenId uint64, amount lib.Amount) lib.ErrorI {
	balance, err := s.GetBalance(address, tokenId)
	if err != nil {
		return err
	}
	remaining, ok := balance.Sub(amount)
	if !ok {
		return ErrInsufficientFunds(address, tokenId)
	}
	return s.setBalance(address, tokenId, remaining)
}

// Transfer() atomically moves an amount of a token between two addresses
func (s *StateMachine) Transfer(from, to []byte, tokenId uint64, amount lib.Amount) lib.ErrorI {
	if amount.IsZero() {
		return ErrZeroOrNegativeAmount()
	}
	if err := s.BalanceSub(from, tokenId, amount); err != nil {
		return err
	}
	return s.BalanceAdd(to, tokenId, amount)
}

// AccountBalance pairs a token with the amount an address holds of it
type AccountBalance struct {
	TokenId uint64     `json:"tokenId"`
	Amount  lib.Amount `json:"amount"`
}

// GetAccount() returns every balance entry of an address ordered by token id
func (s *StateMachine) GetAccount(address []byte) (balances []*AccountBalance, err lib.ErrorI) {
	err = s.IterateAndExecute(BalancePrefixForAddress(address), func(key, value []byte) lib.ErrorI {
		segments := lib.DecodeLengthPrefixed(key)
		if len(segments) != 3 || len(segments[2]) != 8 {
			return lib.ErrInvalidStateKey(key)
		}
		balances = append(balances, &AccountBalance{
			TokenId: uint64FromBytes(segments[2]),
			Amount:  lib.Amount(uint64FromBytes(value)),
		})
		return nil
	})
	return
}

// module owned escrow addresses below

// poolEscrowAddress() derives the address holding a pool's reserves
func poolEscrowAddress(poolId uint64) []byte {
	return lib.Hash(lib.Append([]byte("pool/escrow/"), lib.FormatUint64(poolId)))[:AddressSize]
}

// orderEscrowAddress() derives the address holding an order's escrow and collateral
func orderEscrowAddress(orderId []byte) []byte {
	return lib.Hash(lib.Append([]byte("order/escrow/"), orderId))[:AddressSize]
}
