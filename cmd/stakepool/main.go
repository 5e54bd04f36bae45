// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/builtin/stakingpool"
	"github.com/vechain/stakepool/cmd/stakepool/httpserver"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/logdb"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/xenv"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "StakePool",
		Usage:     "Token staking ledger with time based rewards",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			dbCacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			verbosityFlag,
			jsonLogsFlag,
			skipNTPFlag,
			skipLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "single process ledger on the dev network with a manually driven clock",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					dbCacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiBacktraceLimitFlag,
					apiLogsLimitFlag,
					enableAPILogsFlag,
					apiSlowQueriesThresholdFlag,
					persistFlag,
					startTimeFlag,
					verbosityFlag,
					jsonLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
				},
				Action: soloAction,
			},
			{
				Name:   "dev-accounts",
				Usage:  "print the pre-funded accounts of the dev network",
				Action: devAccountsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	if err := requireLoopback(ctx.String(apiAddrFlag.Name)); err != nil {
		return err
	}
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return err
	}

	mainDB, err := openMainDB(instanceDir, ctx.Int(dbCacheFlag.Name))
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	var logDB *logdb.LogDB
	if !ctx.Bool(skipLogsFlag.Name) {
		if logDB, err = openLogDB(instanceDir); err != nil {
			return err
		}
		defer func() { log.Info("closing log database..."); logDB.Close() }()
	}

	if !ctx.Bool(skipNTPFlag.Name) {
		go checkClockOffset()
	}

	return run(ctx, exitSignal, gene, mainDB, logDB, xenv.SystemClock{}, instanceDir)
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	gene := genesis.NewDevnet()

	var (
		mainDB      *lvldb.LevelDB
		logDB       *logdb.LogDB
		instanceDir string
		err         error
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, err = openMainDB(instanceDir, ctx.Int(dbCacheFlag.Name)); err != nil {
			return err
		}
		if logDB, err = openLogDB(instanceDir); err != nil {
			mainDB.Close()
			return err
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if logDB, err = logdb.NewMem(); err != nil {
			mainDB.Close()
			return err
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	start := ctx.Uint64(startTimeFlag.Name)
	if start == 0 {
		start = gene.LaunchTime()
	}
	return run(ctx, exitSignal, gene, mainDB, logDB, xenv.NewManualClock(start), instanceDir)
}

func run(
	ctx *cli.Context,
	exitSignal context.Context,
	gene *genesis.Genesis,
	mainDB *lvldb.LevelDB,
	logDB *logdb.LogDB,
	clock xenv.Clock,
	instanceDir string,
) error {
	stakingpool.SetLogger(log.WithContext("pkg", "stakingpool"))

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	rt := runtime.New(state.NewStater(mainDB, ctx.Int(cacheFlag.Name)), logDB, clock)
	applied, err := gene.Apply(exitSignal, rt)
	if err != nil {
		return errors.Wrap(err, "apply genesis")
	}
	if applied {
		log.Info("genesis applied", "id", gene.ID(), "name", gene.Name())
	}

	enableReqLogger := &atomic.Bool{}
	enableReqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiURL, closeAPI, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		rt,
		api.Options{
			AllowedOrigins:       ctx.String(apiCorsFlag.Name),
			BacktraceLimit:       ctx.Uint64(apiBacktraceLimitFlag.Name),
			Timeout:              time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond,
			EnableReqLogger:      enableReqLogger,
			SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
			EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
			LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
			GenesisID:            gene.ID(),
		},
	)
	if err != nil {
		return errors.Wrap(err, "start API server")
	}
	defer func() { log.Info("stopping API server..."); closeAPI() }()

	printStartupMessage(gene, instanceDir, apiURL, metricsURL)

	<-exitSignal.Done()
	return nil
}

func devAccountsAction(_ *cli.Context) error {
	for i, acc := range genesis.DevAccounts() {
		role := ""
		switch i {
		case 0:
			role = " (owner)"
		case 1:
			role = " (operator)"
		}
		fmt.Printf("%v%v\n    key: %x\n", acc.Address, role, crypto.FromECDSA(acc.PrivateKey))
	}
	return nil
}
