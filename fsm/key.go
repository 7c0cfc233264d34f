package fsm

import (
	"github.com/meridian-network/meridian/lib"
)

/*
	Every record the state machine persists lives under one of the prefixes
	below. Keys are built from length-prefixed segments so multi-part keys
	never collide and iteration ranges stay contiguous; numeric segments are
	big endian so keys sort by value.
*/

var (
	tokenPrefix       = []byte{1}  // token id            -> Token
	tokenSymbolPrefix = []byte{2}  // symbol              -> token id
	balancePrefix     = []byte{3}  // (address, token id) -> Amount
	poolPrefix        = []byte{4}  // pool id             -> Pool
	poolPairPrefix    = []byte{5}  // unordered pair      -> pool id
	orderPrefix       = []byte{6}  // order id            -> Order (active)
	closedOrderPrefix = []byte{7}  // order id            -> Order (closed)
	fillPrefix        = []byte{8}  // (order id, fill id) -> OrderFill
	expiryPrefix      = []byte{9}  // (height, order id)  -> order id
	nextTokenIdKey    = []byte{10} // the token id counter
	blockPrefix       = []byte{11} // height              -> Block
	txIndexPrefix     = []byte{12} // tx hash             -> height
)

// TokenPrefix() covers all token records
func TokenPrefix() []byte { return lib.JoinLenPrefix(tokenPrefix) }

// KeyForToken() returns the state key of a token record
func KeyForToken(id uint64) []byte { return lib.JoinLenPrefix(tokenPrefix, lib.FormatUint64(id)) }

// KeyForTokenSymbol() returns the state key of the symbol -> id index entry
func KeyForTokenSymbol(symbol string) []byte {
	return lib.JoinLenPrefix(tokenSymbolPrefix, []byte(symbol))
}

// KeyForBalance() returns the state key of a (address, token) balance entry
func KeyForBalance(address []byte, tokenId uint64) []byte {
	return lib.JoinLenPrefix(balancePrefix, address, lib.FormatUint64(tokenId))
}

// BalancePrefixForAddress() covers all balance entries of one address
func BalancePrefixForAddress(address []byte) []byte {
	return lib.JoinLenPrefix(balancePrefix, address)
}

// PoolPrefix() covers all pool records
func PoolPrefix() []byte { return lib.JoinLenPrefix(poolPrefix) }

// KeyForPool() returns the state key of a pool record
func KeyForPool(id uint64) []byte { return lib.JoinLenPrefix(poolPrefix, lib.FormatUint64(id)) }

// KeyForPoolPair() returns the state key of the unordered pair -> pool id
// index entry; the pair is normalized so (a, b) and (b, a) map to one key
func KeyForPoolPair(tokenA, tokenB uint64) []byte {
	if tokenB < tokenA {
		tokenA, tokenB = tokenB, tokenA
	}
	return lib.JoinLenPrefix(poolPairPrefix, lib.FormatUint64(tokenA), lib.FormatUint64(tokenB))
}

// OrderPrefix() covers all active order records
func OrderPrefix() []byte { return lib.JoinLenPrefix(orderPrefix) }

// KeyForOrder() returns the state key of an active order record
func KeyForOrder(id []byte) []byte { return lib.JoinLenPrefix(orderPrefix, id) }

// ClosedOrderPrefix() covers all closed order records
func ClosedOrderPrefix() []byte { return lib.JoinLenPrefix(closedOrderPrefix) }

// KeyForClosedOrder() returns the state key of a closed order record
func KeyForClosedOrder(id []byte) []byte { return lib.JoinLenPrefix(closedOrderPrefix, id) }

// FillPrefixForOrder() covers all fill records of one order
func FillPrefixForOrder(orderId []byte) []byte { return lib.JoinLenPrefix(fillPrefix, orderId) }

// KeyForFill() returns the state key of a fill record
func KeyForFill(orderId, fillId []byte) []byte {
	return lib.JoinLenPrefix(fillPrefix, orderId, fillId)
}

// ExpiryPrefix() covers the whole height ordered expiry index
func ExpiryPrefix() []byte { return lib.JoinLenPrefix(expiryPrefix) }

// KeyForExpiry() returns the expiry index key of an active order; entries
// sort by expiry height so EndBlock scans only the due front of the index
func KeyForExpiry(height uint64, orderId []byte) []byte {
	return lib.JoinLenPrefix(expiryPrefix, lib.FormatUint64(height), orderId)
}

// NextTokenIdKey() returns the state key of the token id counter
func NextTokenIdKey() []byte { return lib.JoinLenPrefix(nextTokenIdKey) }

// KeyForBlock() returns the state key of a connected block record
func KeyForBlock(height uint64) []byte {
	return lib.JoinLenPrefix(blockPrefix, lib.FormatUint64(height))
}

// KeyForTxIndex() returns the state key of the tx hash -> height index entry
func KeyForTxIndex(txHash []byte) []byte { return lib.JoinLenPrefix(txIndexPrefix, txHash) }

// heightFromExpiryKey() extracts the expiry height segment from an expiry index key
func heightFromExpiryKey(key []byte) (uint64, []byte, lib.ErrorI) {
	segments := lib.DecodeLengthPrefixed(key)
	if len(segments) != 3 || len(segments[1]) != 8 {
		return 0, nil, lib.ErrInvalidStateKey(key)
	}
	return uint64FromBytes(segments[1]), segments[2], nil
}

// uint64FromBytes() decodes a big endian uint64 segment
func uint64FromBytes(b []byte) (u uint64) {
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	return
}
