package fsm

import (
	"bytes"

	"github.com/meridian-network/meridian/lib"
)

/*
	Limit order book. An order escrows its full sell amount plus a native
	coin collateral at creation; fills transfer out of that escrow, so the
	order owner cannot spend sold funds out from under a filler. Orders
	close exactly one way each: fully filled, cancelled by the owner, or
	expired by height at EndBlock. Closed orders move to their own keyspace
	with the closing tx recorded, keeping the active listing a pure scan.
*/

const (
	OrderStatusActive = "ACTIVE"
	OrderStatusClosed = "CLOSED"

	CloseReasonFilled    = "FILLED"
	CloseReasonCancelled = "CANCELLED"
	CloseReasonExpired   = "EXPIRED"
)

// Order is a limit order selling AmountFrom of TokenFrom at OrderPrice
// (TokenTo base units per whole TokenFrom coin)
type Order struct {
	Id           lib.HexBytes `json:"id"` // the creating tx hash
	Owner        lib.HexBytes `json:"owner"`
	TokenFrom    uint64       `json:"tokenFrom"`
	TokenTo      uint64       `json:"tokenTo"`
	AmountFrom   lib.Amount   `json:"amountFrom"`
	AmountToFill lib.Amount   `json:"amountToFill"`
	OrderPrice   lib.Amount   `json:"orderPrice"`
	OptionDFI    lib.Amount   `json:"optionDFI"` // native coin collateral held until close
	CreateHeight uint64       `json:"createHeight"`
	ExpiryHeight uint64       `json:"expiryHeight"`
	Status       string       `json:"status"`
	CloseReason  string       `json:"closeReason,omitempty"`
	CloseTx      lib.HexBytes `json:"closeTx,omitempty"`
}

// OrderFill records one partial or final fill of an order
type OrderFill struct {
	Id      lib.HexBytes `json:"id"` // the filling tx hash
	OrderId lib.HexBytes `json:"orderId"`
	Filler  lib.HexBytes `json:"filler"`
	Amount  lib.Amount   `json:"amount"`
	Height  uint64       `json:"height"`
}

// CreateOrder() opens an order under the creating tx hash, escrowing the
// full sell amount and the collateral fee, and schedules its expiry
func (s *StateMachine) CreateOrder(owner []byte, tokenFrom, tokenTo uint64, amountFrom, orderPrice lib.Amount, txHash []byte) (*Order, lib.ErrorI) {
	if amountFrom.IsZero() {
		return nil, ErrZeroOrNegativeAmount()
	}
	if orderPrice.IsZero() {
		return nil, ErrInvalidOrderPrice()
	}
	if tokenFrom == tokenTo {
		return nil, ErrIdenticalTokens(tokenFrom)
	}
	if _, err := s.GetToken(tokenFrom); err != nil {
		return nil, err
	}
	if _, err := s.GetToken(tokenTo); err != nil {
		return nil, err
	}
	order := &Order{
		Id:           txHash,
		Owner:        owner,
		TokenFrom:    tokenFrom,
		TokenTo:      tokenTo,
		AmountFrom:   amountFrom,
		AmountToFill: amountFrom,
		OrderPrice:   orderPrice,
		OptionDFI:    amountFrom.Percent(s.Config.OrderCollateralPercent),
		CreateHeight: s.height,
		ExpiryHeight: s.height + s.Config.OrderExpiryBlocks,
		Status:       OrderStatusActive,
	}
	escrow := orderEscrowAddress(order.Id)
	if err := s.Transfer(owner, escrow, tokenFrom, amountFrom); err != nil {
		return nil, err
	}
	if !order.OptionDFI.IsZero() {
		if err := s.Transfer(owner, escrow, NativeTokenId, order.OptionDFI); err != nil {
			return nil, err
		}
	}
	if err := s.SetObject(KeyForOrder(order.Id), order); err != nil {
		return nil, err
	}
	if err := s.Set(KeyForExpiry(order.ExpiryHeight, order.Id), order.Id); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder() loads an order by id, active or closed
func (s *StateMachine) GetOrder(id []byte) (*Order, lib.ErrorI) {
	order := new(Order)
	found, err := s.GetObject(KeyForOrder(id), order)
	if err != nil {
		return nil, err
	}
	if found {
		return order, nil
	}
	found, err = s.GetObject(KeyForClosedOrder(id), order)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSuchOrder(id)
	}
	return order, nil
}

// getActiveOrder() loads an active order, distinguishing closed from unknown
func (s *StateMachine) getActiveOrder(id []byte) (*Order, lib.ErrorI) {
	order := new(Order)
	found, err := s.GetObject(KeyForOrder(id), order)
	if err != nil {
		return nil, err
	}
	if !found {
		if closed, _ := s.GetObject(KeyForClosedOrder(id), new(Order)); closed {
			return nil, ErrOrderAlreadyClosed(id)
		}
		return nil, ErrNoSuchOrder(id)
	}
	return order, nil
}

// FulfillOrder() fills an active order for up to its remaining amount: the
// filler receives tokenFrom out of the order escrow and the owner receives
// floor(amount * price) of tokenTo from the filler. A fill that zeroes the
// remainder closes the order as filled and refunds the collateral.
func (s *StateMachine) FulfillOrder(filler []byte, orderId []byte, amount lib.Amount, txHash []byte) (*OrderFill, lib.ErrorI) {
	if amount.IsZero() {
		return nil, ErrZeroOrNegativeAmount()
	}
	order, err := s.getActiveOrder(orderId)
	if err != nil {
		return nil, err
	}
	if amount > order.AmountToFill {
		return nil, ErrAmountExceedsAvailable(amount, order.AmountToFill)
	}
	counter := amount.MulPrice(order.OrderPrice)
	if counter.IsZero() {
		return nil, ErrInsufficientAmount()
	}
	if err = s.Transfer(orderEscrowAddress(order.Id), filler, order.TokenFrom, amount); err != nil {
		return nil, err
	}
	if err = s.Transfer(filler, order.Owner, order.TokenTo, counter); err != nil {
		return nil, err
	}
	fill := &OrderFill{
		Id:      txHash,
		OrderId: order.Id,
		Filler:  filler,
		Amount:  amount,
		Height:  s.height,
	}
	if err = s.SetObject(KeyForFill(order.Id, fill.Id), fill); err != nil {
		return nil, err
	}
	order.AmountToFill, _ = order.AmountToFill.Sub(amount)
	if order.AmountToFill.IsZero() {
		return fill, s.closeOrder(order, CloseReasonFilled, txHash)
	}
	return fill, s.SetObject(KeyForOrder(order.Id), order)
}

// CloseOrder() cancels an active order on behalf of its owner, refunding the
// remaining escrow and the collateral
func (s *StateMachine) CloseOrder(sender, orderId, txHash []byte) lib.ErrorI {
	order, err := s.getActiveOrder(orderId)
	if err != nil {
		return err
	}
	if !bytes.Equal(sender, order.Owner) {
		return ErrNotOwner(sender)
	}
	return s.closeOrder(order, CloseReasonCancelled, txHash)
}

// ExpireOrders() closes every active order whose expiry height has been
// reached; driven from EndBlock, never by a caller
func (s *StateMachine) ExpireOrders() lib.ErrorI {
	type due struct{ key, orderId []byte }
	var dues []due
	// the index sorts by height, so the due entries are the front of the scan
	it, err := s.Iterator(ExpiryPrefix())
	if err != nil {
		return err
	}
	for ; it.Valid(); it.Next() {
		height, orderId, e := heightFromExpiryKey(it.Key())
		if e != nil {
			it.Close()
			return e
		}
		if height > s.height {
			break
		}
		dues = append(dues, due{key: bytes.Clone(it.Key()), orderId: bytes.Clone(orderId)})
	}
	it.Close()
	for _, d := range dues {
		order, e := s.getActiveOrder(d.orderId)
		if e != nil {
			return e
		}
		if e = s.closeOrder(order, CloseReasonExpired, nil); e != nil {
			return e
		}
	}
	return nil
}

// closeOrder() performs the single terminal transition: refund whatever the
// close reason leaves in escrow, drop the active record and expiry index
// entry, and persist the closed record with the closing tx
func (s *StateMachine) closeOrder(order *Order, reason string, closeTx []byte) lib.ErrorI {
	escrow := orderEscrowAddress(order.Id)
	// a fill already drained its share; whatever remains goes home
	if reason != CloseReasonFilled && !order.AmountToFill.IsZero() {
		if err := s.Transfer(escrow, order.Owner, order.TokenFrom, order.AmountToFill); err != nil {
			return err
		}
	}
	if !order.OptionDFI.IsZero() {
		if err := s.Transfer(escrow, order.Owner, NativeTokenId, order.OptionDFI); err != nil {
			return err
		}
	}
	if err := s.Delete(KeyForOrder(order.Id)); err != nil {
		return err
	}
	if err := s.Delete(KeyForExpiry(order.ExpiryHeight, order.Id)); err != nil {
		return err
	}
	order.Status, order.CloseReason, order.CloseTx = OrderStatusClosed, reason, closeTx
	return s.SetObject(KeyForClosedOrder(order.Id), order)
}

// ListOrders() returns every active order in key order
func (s *StateMachine) ListOrders() (orders []*Order, err lib.ErrorI) {
	return s.listOrders(OrderPrefix())
}

// ListClosedOrders() returns every closed order in key order
func (s *StateMachine) ListClosedOrders() (orders []*Order, err lib.ErrorI) {
	return s.listOrders(ClosedOrderPrefix())
}

func (s *StateMachine) listOrders(prefix []byte) (orders []*Order, err lib.ErrorI) {
	err = s.IterateAndExecute(prefix, func(_, value []byte) lib.ErrorI {
		order := new(Order)
		if e := lib.Unmarshal(value, order); e != nil {
			return e
		}
		orders = append(orders, order)
		return nil
	})
	return
}

// ListFills() returns every fill recorded against an order
func (s *StateMachine) ListFills(orderId []byte) (fills []*OrderFill, err lib.ErrorI) {
	err = s.IterateAndExecute(FillPrefixForOrder(orderId), func(_, value []byte) lib.ErrorI {
		fill := new(OrderFill)
		if e := lib.Unmarshal(value, fill); e != nil {
			return e
		}
		fills = append(fills, fill)
		return nil
	})
	return
}
