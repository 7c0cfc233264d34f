package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meridian-network/meridian/cmd/rpc"
	"github.com/meridian-network/meridian/controller"
	"github.com/meridian-network/meridian/fsm"
	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/store"
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "meridian is a dex ledger node",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "start the ledger daemon",
	Run: func(cmd *cobra.Command, args []string) {
		Start()
	},
}

var dataDir string

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", lib.DefaultDataDirPath(), "custom data directory location")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func Start() {
	config := InitializeDataDirectory(dataDir, lib.NewDefaultLogger())
	l := lib.NewLogger(lib.LoggerConfig{Level: config.GetLogLevel()}, config.DataDirPath)
	db, err := store.New(config, l)
	if err != nil {
		l.Fatal(err.Error())
	}
	c := controller.New(config, db, l)
	// a fresh database starts from the genesis file
	if c.Height() == 0 {
		genesis, e := fsm.NewGenesisFromFile(config.DataDirPath)
		if e != nil {
			l.Fatal(e.Error())
		}
		if err = c.InitGenesis(genesis); err != nil {
			l.Fatal(err.Error())
		}
	}
	rpc.NewServer(c, config, l).Start()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGABRT)
	s := <-stop
	if err = db.Close(); err != nil {
		l.Error(err.Error())
	}
	l.Infof("Exit command %s received", s)
	os.Exit(0)
}

// InitializeDataDirectory() ensures the data directory exists with a config
// and genesis file, creating developer defaults for any that are missing
func InitializeDataDirectory(dataDirPath string, log lib.LoggerI) lib.Config {
	if dataDirPath == "" {
		dataDirPath = lib.DefaultDataDirPath()
	}
	log.Infof("Reading data directory at %s", dataDirPath)
	if err := os.MkdirAll(dataDirPath, os.ModePerm); err != nil {
		panic(err)
	}
	configFilePath := filepath.Join(dataDirPath, lib.ConfigFilePath)
	config, err := lib.NewConfigFromFile(configFilePath)
	if err != nil {
		panic(err)
	}
	config.DataDirPath = dataDirPath
	genesisFilePath := filepath.Join(dataDirPath, lib.GenesisFilePath)
	if _, e := os.Stat(genesisFilePath); errors.Is(e, os.ErrNotExist) {
		log.Infof("Creating %s file", lib.GenesisFilePath)
		WriteDefaultGenesisFile(config)
	}
	return config
}

// WriteDefaultGenesisFile() seeds a genesis with only the native coin registered
func WriteDefaultGenesisFile(config lib.Config) {
	j := &fsm.GenesisState{
		Tokens: []*fsm.Token{{Id: fsm.NativeTokenId, Symbol: "MDN", IsDAT: true}},
	}
	if err := lib.SaveJSONToFile(j, config.DataDirPath, lib.GenesisFilePath); err != nil {
		panic(err)
	}
}
