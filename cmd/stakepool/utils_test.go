// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"
)

const testGenesis = `
launchTime: 1700000000
token:
  name: Stake Token
  symbol: STK
  decimals: 18
accounts:
  - address: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
    balance: 1000000
registry:
  owner: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
  reserve: 40000
pools:
  - minStakingPeriod: 300
    maxStakingPeriod: 14400
    maxStakeAmount: 10000
    capacity: 100000
    hourlyRewardRate: 10
`

func newContext(t *testing.T, args map[string]string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	genesisFlag.Apply(set)
	dataDirFlag.Apply(set)
	for k, v := range args {
		require.NoError(t, set.Set(k, v))
	}
	return cli.NewContext(nil, set, nil)
}

func TestSelectGenesis(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testGenesis), 0o600))

	gene, err := selectGenesis(newContext(t, map[string]string{genesisFlag.Name: path}))
	require.NoError(t, err)
	assert.Equal(t, "customnet", gene.Name())
	assert.Equal(t, uint64(1700000000), gene.LaunchTime())

	instanceDir, err := makeInstanceDir(newContext(t, map[string]string{dataDirFlag.Name: dir}), gene)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(instanceDir), "instance-"))

	stat, err := os.Stat(instanceDir)
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestSelectGenesisErrors(t *testing.T) {
	_, err := selectGenesis(newContext(t, nil))
	assert.EqualError(t, err, "genesis flag not specified")

	_, err = selectGenesis(newContext(t, map[string]string{genesisFlag.Name: filepath.Join(t.TempDir(), "missing.yaml")}))
	assert.ErrorContains(t, err, "read genesis file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("launchTime: [1"), 0o600))
	_, err = selectGenesis(newContext(t, map[string]string{genesisFlag.Name: path}))
	assert.ErrorContains(t, err, "decode genesis file")

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("launchTime: 0"), 0o600))
	_, err = selectGenesis(newContext(t, map[string]string{genesisFlag.Name: path}))
	assert.ErrorContains(t, err, "build genesis")
}

func TestRequireLoopback(t *testing.T) {
	for _, addr := range []string{"localhost:8669", "127.0.0.1:8669", "[::1]:8669"} {
		assert.NoError(t, requireLoopback(addr), addr)
	}
	for _, addr := range []string{":8669", "0.0.0.0:8669", "192.168.1.10:8669", "example.com:80", "localhost"} {
		assert.Error(t, requireLoopback(addr), addr)
	}
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 16, normalizeCacheSize(1))
	assert.Equal(t, 32, normalizeCacheSize(32))
}

func TestOpenDatabases(t *testing.T) {
	dir := t.TempDir()

	mainDB, err := openMainDB(dir, 16)
	require.NoError(t, err)
	require.NoError(t, mainDB.Put([]byte("k"), []byte("v")))
	mainDB.Close()

	logDB, err := openLogDB(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs.db"), logDB.Path())
	logDB.Close()
}
