package fsm

import (
	"fmt"

	"github.com/meridian-network/meridian/lib"
)

// GenesisState is the JSON shape of the first block's state: the token
// registry and the initial balance entries
type GenesisState struct {
	Tokens   []*Token          `json:"tokens"`
	Accounts []*GenesisAccount `json:"accounts"`
	Pools    []*GenesisPool    `json:"pools,omitempty"`
}

// GenesisAccount seeds one balance entry
type GenesisAccount struct {
	Address lib.HexBytes `json:"address"`
	TokenId uint64       `json:"tokenId"`
	Amount  lib.Amount   `json:"amount"`
}

// GenesisPool seeds one empty pool; liquidity arrives through transactions
type GenesisPool struct {
	TokenA       uint64       `json:"tokenA"`
	TokenB       uint64       `json:"tokenB"`
	CommissionBp uint64       `json:"commissionBp"`
	Owner        lib.HexBytes `json:"owner"`
}

// NewGenesisFromFile() reads the genesis state from a data directory
func NewGenesisFromFile(dataDirPath string) (*GenesisState, lib.ErrorI) {
	genesis := new(GenesisState)
	if err := lib.NewJSONFromFile(genesis, dataDirPath, lib.GenesisFilePath); err != nil {
		return nil, ErrReadGenesisFile(err)
	}
	return genesis, nil
}

// ApplyGenesisState() writes the genesis tokens and balances into a fresh
// state; token ids must be declared in registration order starting at the
// native coin (id 0)
func (s *StateMachine) ApplyGenesisState(genesis *GenesisState) lib.ErrorI {
	for _, token := range genesis.Tokens {
		id, err := s.CreateToken(token.Symbol, token.IsDAT)
		if err != nil {
			return err
		}
		if id != token.Id {
			return ErrUnmarshalGenesis(fmt.Errorf("token %s declares id %d but registers as %d", token.Symbol, token.Id, id))
		}
	}
	for _, account := range genesis.Accounts {
		if err := checkAddress(account.Address); err != nil {
			return err
		}
		if _, err := s.GetToken(account.TokenId); err != nil {
			return err
		}
		if err := s.BalanceAdd(account.Address, account.TokenId, account.Amount); err != nil {
			return err
		}
	}
	// pools declared at genesis start empty; their LP tokens take the ids
	// after the declared tokens
	for _, pool := range genesis.Pools {
		if err := checkAddress(pool.Owner); err != nil {
			return err
		}
		if _, err := s.CreatePool(pool.TokenA, pool.TokenB, pool.CommissionBp, pool.Owner); err != nil {
			return err
		}
	}
	return nil
}

// ErrUnmarshalGenesis() flags an inconsistent genesis file
func ErrUnmarshalGenesis(err error) lib.ErrorI {
	return lib.NewError(lib.CodeUnmarshalGenesis, lib.StateMachineModule, fmt.Sprintf("invalid genesis state: %s", err.Error()))
}

// ExportState() dumps the registry and balances; used by the query surface
// and by tests comparing state across reorg replays
func (s *StateMachine) ExportState() (*GenesisState, lib.ErrorI) {
	tokens, err := s.ListTokens()
	if err != nil {
		return nil, err
	}
	genesis := &GenesisState{Tokens: tokens}
	err = s.IterateAndExecute(lib.JoinLenPrefix(balancePrefix), func(key, value []byte) lib.ErrorI {
		segments := lib.DecodeLengthPrefixed(key)
		if len(segments) != 3 || len(segments[2]) != 8 {
			return lib.ErrInvalidStateKey(key)
		}
		genesis.Accounts = append(genesis.Accounts, &GenesisAccount{
			Address: lib.HexBytes(segments[1]),
			TokenId: uint64FromBytes(segments[2]),
			Amount:  lib.Amount(uint64FromBytes(value)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return genesis, nil
}
