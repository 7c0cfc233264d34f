package fsm

import (
	"github.com/meridian-network/meridian/lib"
)

// NativeTokenId is the id of the coin registered first at genesis; order
// collateral is always escrowed in this token
const NativeTokenId = 0

// Token is a registered asset on the ledger
type Token struct {
	Id       uint64 `json:"id"`
	Symbol   string `json:"symbol"`
	Decimals uint64 `json:"decimals"` // fixed at 8
	IsDAT    bool   `json:"isDAT"`    // tradable asset flag
}

// CreateToken() registers a new token under the next free id
func (s *StateMachine) CreateToken(symbol string, isDAT bool) (uint64, lib.ErrorI) {
	if err := checkTokenSymbol(symbol); err != nil {
		return 0, err
	}
	if _, err := s.GetTokenBySymbol(symbol); err == nil {
		return 0, ErrTokenAlreadyExists(symbol)
	}
	id, err := s.nextTokenId()
	if err != nil {
		return 0, err
	}
	token := &Token{Id: id, Symbol: symbol, Decimals: lib.AmountDecimals, IsDAT: isDAT}
	if err = s.SetObject(KeyForToken(id), token); err != nil {
		return 0, err
	}
	if err = s.Set(KeyForTokenSymbol(symbol), lib.FormatUint64(id)); err != nil {
		return 0, err
	}
	return id, nil
}

// GetToken() loads a token record by id
func (s *StateMachine) GetToken(id uint64) (*Token, lib.ErrorI) {
	token := new(Token)
	found, err := s.GetObject(KeyForToken(id), token)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSuchToken(id)
	}
	return token, nil
}

// GetTokenBySymbol() loads a token record via the symbol index
func (s *StateMachine) GetTokenBySymbol(symbol string) (*Token, lib.ErrorI) {
	bz, err := s.Get(KeyForTokenSymbol(symbol))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, ErrNoSuchToken(symbol)
	}
	return s.GetToken(uint64FromBytes(bz))
}

// ListTokens() returns every registered token ordered by id
func (s *StateMachine) ListTokens() (tokens []*Token, err lib.ErrorI) {
	err = s.IterateAndExecute(TokenPrefix(), func(_, value []byte) lib.ErrorI {
		token := new(Token)
		if e := lib.Unmarshal(value, token); e != nil {
			return e
		}
		tokens = append(tokens, token)
		return nil
	})
	return
}

// nextTokenId() returns the current id counter and advances it
func (s *StateMachine) nextTokenId() (uint64, lib.ErrorI) {
	bz, err := s.Get(NextTokenIdKey())
	if err != nil {
		return 0, err
	}
	id := uint64FromBytes(bz)
	if err = s.Set(NextTokenIdKey(), lib.FormatUint64(id+1)); err != nil {
		return 0, err
	}
	return id, nil
}

const maxTokenSymbolLength = 16

// checkTokenSymbol() validates the shape of a token symbol; LP token symbols
// join the pair symbols with '-'
func checkTokenSymbol(symbol string) lib.ErrorI {
	if symbol == "" || len(symbol) > maxTokenSymbolLength {
		return ErrInvalidTokenSymbol(symbol)
	}
	for _, c := range symbol {
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
		default:
			return ErrInvalidTokenSymbol(symbol)
		}
	}
	return nil
}
