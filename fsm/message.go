package fsm

import (
	"github.com/meridian-network/meridian/lib"
)

/*
	The transaction payload catalogue: a closed set of typed request
	variants, one per ledger operation. Each message validates its own
	fields in Check() before any state is read or written; handleMessage
	routes a checked message to its engine. Anything outside this set is
	rejected with UnknownMessage.
*/

const (
	MessageTransferName        = "transfer"
	MessageCreateTokenName     = "createToken"
	MessageCreatePoolName      = "createPool"
	MessageAddLiquidityName    = "addLiquidity"
	MessageRemoveLiquidityName = "removeLiquidity"
	MessageCreateOrderName     = "createOrder"
	MessageFulfillOrderName    = "fulfillOrder"
	MessageCloseOrderName      = "closeOrder"
)

// MessageI is a typed transaction payload with stateless field validation
type MessageI interface {
	Check() lib.ErrorI
	Name() string
}

// MessageTransfer moves an amount of a token to another address
type MessageTransfer struct {
	To      lib.HexBytes `json:"to"`
	TokenId uint64       `json:"tokenId"`
	Amount  lib.Amount   `json:"amount"`
}

func (m *MessageTransfer) Name() string { return MessageTransferName }
func (m *MessageTransfer) Check() lib.ErrorI {
	if err := checkAddress(m.To); err != nil {
		return err
	}
	if m.Amount.IsZero() {
		return ErrZeroOrNegativeAmount()
	}
	return nil
}

// MessageCreateToken registers a new tradable token
type MessageCreateToken struct {
	Symbol string `json:"symbol"`
	IsDAT  bool   `json:"isDAT"`
}

func (m *MessageCreateToken) Name() string { return MessageCreateTokenName }
func (m *MessageCreateToken) Check() lib.ErrorI {
	return checkTokenSymbol(m.Symbol)
}

// MessageCreatePool creates the pool for an unordered token pair
type MessageCreatePool struct {
	TokenA       uint64 `json:"tokenA"`
	TokenB       uint64 `json:"tokenB"`
	CommissionBp uint64 `json:"commissionBp"`
}

func (m *MessageCreatePool) Name() string { return MessageCreatePoolName }
func (m *MessageCreatePool) Check() lib.ErrorI {
	if m.TokenA == m.TokenB {
		return ErrIdenticalTokens(m.TokenA)
	}
	return nil
}

// MessageAddLiquidity deposits both sides of a pair for LP shares
type MessageAddLiquidity struct {
	PoolId  uint64     `json:"poolId"`
	AmountA lib.Amount `json:"amountA"`
	AmountB lib.Amount `json:"amountB"`
}

func (m *MessageAddLiquidity) Name() string { return MessageAddLiquidityName }
func (m *MessageAddLiquidity) Check() lib.ErrorI {
	// the native coin registers first, so its id can never name a pool
	if m.PoolId == NativeTokenId {
		return ErrInvalidPoolId()
	}
	if m.AmountA.IsZero() || m.AmountB.IsZero() {
		return ErrSingleAssetNotAllowed()
	}
	return nil
}

// MessageRemoveLiquidity burns LP shares for the proportional reserves
type MessageRemoveLiquidity struct {
	PoolId uint64     `json:"poolId"`
	Shares lib.Amount `json:"shares"`
}

func (m *MessageRemoveLiquidity) Name() string { return MessageRemoveLiquidityName }
func (m *MessageRemoveLiquidity) Check() lib.ErrorI {
	if m.PoolId == NativeTokenId {
		return ErrInvalidPoolId()
	}
	if m.Shares.IsZero() {
		return ErrZeroOrNegativeAmount()
	}
	return nil
}

// MessageCreateOrder opens a limit order selling AmountFrom of TokenFrom
type MessageCreateOrder struct {
	TokenFrom  uint64     `json:"tokenFrom"`
	TokenTo    uint64     `json:"tokenTo"`
	AmountFrom lib.Amount `json:"amountFrom"`
	OrderPrice lib.Amount `json:"orderPrice"`
}

func (m *MessageCreateOrder) Name() string { return MessageCreateOrderName }
func (m *MessageCreateOrder) Check() lib.ErrorI {
	if m.TokenFrom == m.TokenTo {
		return ErrIdenticalTokens(m.TokenFrom)
	}
	if m.AmountFrom.IsZero() {
		return ErrZeroOrNegativeAmount()
	}
	if m.OrderPrice.IsZero() {
		return ErrInvalidOrderPrice()
	}
	return nil
}

// MessageFulfillOrder fills an active order for up to its remaining amount
type MessageFulfillOrder struct {
	OrderId lib.HexBytes `json:"orderId"`
	Amount  lib.Amount   `json:"amount"`
}

func (m *MessageFulfillOrder) Name() string { return MessageFulfillOrderName }
func (m *MessageFulfillOrder) Check() lib.ErrorI {
	if len(m.OrderId) != lib.HashSize {
		return lib.ErrInvalidArgument()
	}
	if m.Amount.IsZero() {
		return ErrZeroOrNegativeAmount()
	}
	return nil
}

// MessageCloseOrder cancels an active order; only the owner may send it
type MessageCloseOrder struct {
	OrderId lib.HexBytes `json:"orderId"`
}

func (m *MessageCloseOrder) Name() string { return MessageCloseOrderName }
func (m *MessageCloseOrder) Check() lib.ErrorI {
	if len(m.OrderId) != lib.HashSize {
		return lib.ErrInvalidArgument()
	}
	return nil
}

// newMessageForType() returns an empty message of the named type
func newMessageForType(name string) (MessageI, lib.ErrorI) {
	switch name {
	case MessageTransferName:
		return new(MessageTransfer), nil
	case MessageCreateTokenName:
		return new(MessageCreateToken), nil
	case MessageCreatePoolName:
		return new(MessageCreatePool), nil
	case MessageAddLiquidityName:
		return new(MessageAddLiquidity), nil
	case MessageCreateOrderName:
		return new(MessageCreateOrder), nil
	case MessageRemoveLiquidityName:
		return new(MessageRemoveLiquidity), nil
	case MessageFulfillOrderName:
		return new(MessageFulfillOrder), nil
	case MessageCloseOrderName:
		return new(MessageCloseOrder), nil
	default:
		return nil, ErrUnknownMessage(name)
	}
}

// handleMessage() routes a checked message to its engine; signer
// authorization was already established by the validation layer
func (s *StateMachine) handleMessage(signer []byte, message MessageI, txHash []byte) lib.ErrorI {
	switch msg := message.(type) {
	case *MessageTransfer:
		return s.Transfer(signer, msg.To, msg.TokenId, msg.Amount)
	case *MessageCreateToken:
		_, err := s.CreateToken(msg.Symbol, msg.IsDAT)
		return err
	case *MessageCreatePool:
		_, err := s.CreatePool(msg.TokenA, msg.TokenB, msg.CommissionBp, signer)
		return err
	case *MessageAddLiquidity:
		_, err := s.AddLiquidity(msg.PoolId, signer, msg.AmountA, msg.AmountB)
		return err
	case *MessageRemoveLiquidity:
		_, _, err := s.RemoveLiquidity(msg.PoolId, signer, msg.Shares)
		return err
	case *MessageCreateOrder:
		_, err := s.CreateOrder(signer, msg.TokenFrom, msg.TokenTo, msg.AmountFrom, msg.OrderPrice, txHash)
		return err
	case *MessageFulfillOrder:
		_, err := s.FulfillOrder(signer, msg.OrderId, msg.Amount, txHash)
		return err
	case *MessageCloseOrder:
		return s.CloseOrder(signer, msg.OrderId, txHash)
	default:
		return ErrUnknownMessage(message.Name())
	}
}
