package lib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/units"
)

/* This file implements logic for 'user controlled' global configurations of each module of the node */

const (
	// FILE NAMES in the 'data directory'
	ConfigFilePath  = "config.json"  // the file path for the node configuration
	GenesisFilePath = "genesis.json" // the file path for the genesis (first block)
	DBName          = "meridian"     // the name of the ledger database directory
)

// Config is the structure of the user configuration options for a node
type Config struct {
	MainConfig  // main options spanning over all modules
	RPCConfig   // rpc API options
	StoreConfig // persistence options
	DexConfig   // pool and order book policy constants
}

// DefaultConfig() returns a Config with developer set options
func DefaultConfig() Config {
	return Config{
		MainConfig:  DefaultMainConfig(),
		RPCConfig:   DefaultRPCConfig(),
		StoreConfig: DefaultStoreConfig(),
		DexConfig:   DefaultDexConfig(),
	}
}

// MAIN CONFIG BELOW

type MainConfig struct {
	LogLevel    string `json:"logLevel"`    // any level includes the levels above it: debug < info < warning < error
	ChainId     uint64 `json:"chainId"`     // the identifier of this particular chain
	DataDirPath string `json:"dataDirPath"` // the path of the designated folder where the application stores its data
}

// DefaultMainConfig() sets log level to 'info'
func DefaultMainConfig() MainConfig {
	return MainConfig{
		LogLevel:    "info",
		ChainId:     1,
		DataDirPath: DefaultDataDirPath(),
	}
}

// GetLogLevel() parses the log string in the config file into a LogLevel Enum
func (m *MainConfig) GetLogLevel() int32 {
	switch {
	case strings.Contains(strings.ToLower(m.LogLevel), "deb"):
		return DebugLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "inf"):
		return InfoLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "war"):
		return WarnLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "err"):
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// RPC CONFIG BELOW

type RPCConfig struct {
	RPCPort    string `json:"rpcPort"`    // the port where the http json rpc serves
	RPCUrl     string `json:"rpcUrl"`     // the url where the http json rpc serves
	TimeoutS   int    `json:"timeoutS"`   // the request timeout in seconds
	MaxBodyKBs int64  `json:"maxBodyKBs"` // the maximum accepted request body size in kilobytes
}

// DefaultRPCConfig() sets rpc url to localhost and rpc port to 50002
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		RPCPort:    "50002",
		RPCUrl:     "http://localhost",
		TimeoutS:   3,
		MaxBodyKBs: int64(units.KiB) * 64,
	}
}

// STORE CONFIG BELOW

type StoreConfig struct {
	InMemory bool   `json:"inMemory"` // an ephemeral database, used for testing
	DBName   string `json:"dbName"`   // the name of the database directory
}

// DefaultStoreConfig() returns the developer created default store options
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		InMemory: false,
		DBName:   DBName,
	}
}

// DEX CONFIG BELOW

// DexConfig carries the pool and order book policy constants; these are
// chain parameters inferred from the protocol rules, kept configurable
// rather than hard-coded into the engine formulas
type DexConfig struct {
	MinimumLiquidity       Amount `json:"minimumLiquidity"`       // base units permanently locked at pool genesis (0.00001)
	OrderCollateralPercent uint64 `json:"orderCollateralPercent"` // percent of amountFrom escrowed in the native coin as order collateral
	OrderExpiryBlocks      uint64 `json:"orderExpiryBlocks"`      // blocks until an active order expires (~2 days)
	MaxCommissionBp        uint64 `json:"maxCommissionBp"`        // upper bound for a pool's commission rate in basis points
}

// DefaultDexConfig() returns the protocol default policy constants
func DefaultDexConfig() DexConfig {
	return DexConfig{
		MinimumLiquidity:       1000, // 0.00001000
		OrderCollateralPercent: 80,
		OrderExpiryBlocks:      2880,
		MaxCommissionBp:        10000,
	}
}

// WriteToFile() saves the Config object to a JSON file
func (c Config) WriteToFile(filepath string) error {
	configBz, err := MarshalJSONIndent(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, configBz, os.ModePerm)
}

// NewConfigFromFile() populates a Config object from a JSON file
func NewConfigFromFile(filePath string) (Config, ErrorI) {
	// if the file does not exist, create a default config at the path
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			c := DefaultConfig()
			if e := c.WriteToFile(filePath); e != nil {
				return Config{}, ErrWriteFile(e)
			}
			return c, nil
		}
		return Config{}, ErrReadFile(err)
	}
	bz, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, ErrReadFile(err)
	}
	c := DefaultConfig()
	if err := UnmarshalJSON(bz, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// DefaultDataDirPath() returns the default data directory under the user's home
func DefaultDataDirPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".meridian")
}
