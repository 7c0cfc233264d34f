package rpc

import (
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/meridian-network/meridian/controller"
	"github.com/meridian-network/meridian/fsm"
	"github.com/meridian-network/meridian/lib"
)

/*
	The JSON control surface of the node. Queries read from a snapshot of
	the latest committed version, so they never block the writer and never
	observe a half applied block. Transaction submission is standalone-node
	style: each submitted transaction is sealed into the next block and
	connected immediately; under a consensus layer that layer drives
	ConnectBlock instead and this route is disabled.
*/

const (
	ContentType     = "Content-Type"
	ApplicationJSON = "application/json; charset=utf-8"

	TxRoutePath            = "/v1/tx"
	HeightRoutePath        = "/v1/query/height"
	AccountRoutePath       = "/v1/query/account"
	PoolRoutePath          = "/v1/query/pool"
	PoolsRoutePath         = "/v1/query/pools"
	OrderRoutePath         = "/v1/query/order"
	OrdersRoutePath        = "/v1/query/orders"
	BlockByHeightRoutePath = "/v1/query/block-by-height"
	StateRoutePath         = "/v1/query/state"
)

// Server is the http json rpc of the node
type Server struct {
	controller *controller.Controller
	config     lib.Config
	logger     lib.LoggerI
}

// NewServer() creates a Server over the given controller
func NewServer(c *controller.Controller, config lib.Config, logger lib.LoggerI) *Server {
	return &Server{controller: c, config: config, logger: logger}
}

// Start() serves the rpc in a goroutine
func (s *Server) Start() {
	router := httprouter.New()
	router.POST(TxRoutePath, s.Transaction)
	router.GET(HeightRoutePath, s.Height)
	router.POST(AccountRoutePath, s.Account)
	router.POST(PoolRoutePath, s.Pool)
	router.GET(PoolsRoutePath, s.Pools)
	router.POST(OrderRoutePath, s.Order)
	router.POST(OrdersRoutePath, s.Orders)
	router.POST(BlockByHeightRoutePath, s.BlockByHeight)
	router.GET(StateRoutePath, s.State)
	go func() {
		s.logger.Infof("rpc listening on port %s", s.config.RPCPort)
		timeout := time.Duration(s.config.TimeoutS) * time.Second
		handler := http.TimeoutHandler(cors.AllowAll().Handler(router), timeout, ErrServerTimeout().Error())
		s.logger.Fatal(http.ListenAndServe(":"+s.config.RPCPort, handler).Error())
	}()
}

// Height() responds with the number of connected blocks
func (s *Server) Height(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, s.logger, struct {
		Height        uint64       `json:"height"`
		LastBlockHash lib.HexBytes `json:"lastBlockHash"`
	}{s.controller.Height(), s.controller.LastBlockHash()})
}

// Transaction() seals the submitted transaction into the next block and connects it
func (s *Server) Transaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tx := new(lib.Transaction)
	if !parse(w, r, s.logger, tx, int64(s.config.MaxBodyKBs)) {
		return
	}
	block := s.nextBlock(tx)
	if err := s.controller.ConnectBlock(block); err != nil {
		writeError(w, s.logger, err)
		return
	}
	hash, _ := tx.Hash()
	write(w, s.logger, struct {
		TxHash    lib.HexBytes `json:"txHash"`
		BlockHash lib.HexBytes `json:"blockHash"`
		Height    uint64       `json:"height"`
	}{hash, block.BlockHeader.Hash, block.BlockHeader.Height})
}

// Account() responds with every balance entry of an address
func (s *Server) Account(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(struct {
		Address lib.HexBytes `json:"address"`
	})
	if !parse(w, r, s.logger, req, int64(s.config.MaxBodyKBs)) {
		return
	}
	s.query(w, func(sm *fsm.StateMachine) (any, lib.ErrorI) { return sm.GetAccount(req.Address) })
}

// Pool() responds with a single pool record
func (s *Server) Pool(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(struct {
		PoolId uint64 `json:"poolId"`
	})
	if !parse(w, r, s.logger, req, int64(s.config.MaxBodyKBs)) {
		return
	}
	s.query(w, func(sm *fsm.StateMachine) (any, lib.ErrorI) { return sm.GetPool(req.PoolId) })
}

// Pools() responds with every pool record
func (s *Server) Pools(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.query(w, func(sm *fsm.StateMachine) (any, lib.ErrorI) { return sm.ListPools() })
}

// Order() responds with an order and its fills
func (s *Server) Order(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(struct {
		OrderId lib.HexBytes `json:"orderId"`
	})
	if !parse(w, r, s.logger, req, int64(s.config.MaxBodyKBs)) {
		return
	}
	s.query(w, func(sm *fsm.StateMachine) (any, lib.ErrorI) {
		order, err := sm.GetOrder(req.OrderId)
		if err != nil {
			return nil, err
		}
		fills, err := sm.ListFills(req.OrderId)
		if err != nil {
			return nil, err
		}
		return struct {
			Order *fsm.Order       `json:"order"`
			Fills []*fsm.OrderFill `json:"fills"`
		}{order, fills}, nil
	})
}

// Orders() responds with the active listing, or the closed one on request
func (s *Server) Orders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(struct {
		Closed bool `json:"closed"`
	})
	if !parse(w, r, s.logger, req, int64(s.config.MaxBodyKBs)) {
		return
	}
	s.query(w, func(sm *fsm.StateMachine) (any, lib.ErrorI) {
		if req.Closed {
			return sm.ListClosedOrders()
		}
		return sm.ListOrders()
	})
}

// BlockByHeight() responds with a connected block record
func (s *Server) BlockByHeight(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(struct {
		Height uint64 `json:"height"`
	})
	if !parse(w, r, s.logger, req, int64(s.config.MaxBodyKBs)) {
		return
	}
	block, err := s.controller.GetBlockByHeight(req.Height)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	write(w, s.logger, block)
}

// State() responds with the full exported ledger state
func (s *Server) State(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.query(w, func(sm *fsm.StateMachine) (any, lib.ErrorI) { return sm.ExportState() })
}

// query() runs a read against a snapshot of the latest committed version
func (s *Server) query(w http.ResponseWriter, callback func(*fsm.StateMachine) (any, lib.ErrorI)) {
	sm, release, err := s.controller.SnapshotFSM()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	defer release()
	result, err := callback(sm)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	write(w, s.logger, result)
}

// nextBlock() seals transactions into a block extending the current tip
func (s *Server) nextBlock(txs ...*lib.Transaction) *lib.Block {
	height, lastHash := s.controller.Height()+1, s.controller.LastBlockHash()
	header := &lib.BlockHeader{
		Height:        height,
		LastBlockHash: lastHash,
		Time:          uint64(time.Now().UnixMicro()),
	}
	seed, _ := lib.Marshal(struct {
		Header *lib.BlockHeader   `json:"header"`
		Txs    []*lib.Transaction `json:"txs"`
	}{header, txs})
	header.Hash = lib.Hash(seed)
	return &lib.Block{BlockHeader: header, Transactions: txs}
}

// rpc module error constructors below

func ErrInvalidRequest(err error) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidRequest, lib.RPCModule, fmt.Sprintf("invalid request: %s", err.Error()))
}

func ErrServerTimeout() lib.ErrorI {
	return lib.NewError(lib.CodeServerTimeout, lib.RPCModule, "server timeout")
}
