package models

import (
	"github.com/ethereum/go-ethereum/common"
)

// DeploymentRecord is an immutable entry in the address ledger
type DeploymentRecord struct {
	Step            string         `json:"step"`
	Contract        string         `json:"contract"`
	Address         common.Address `json:"address"`
	ConstructorArgs []any          `json:"constructorArgs"`
	TxHash          common.Hash    `json:"txHash"`
	BlockNumber     uint64         `json:"blockNumber"`
	GasUsed         uint64         `json:"gasUsed"`
}

// LedgerFile is the persisted form of an address ledger
type LedgerFile struct {
	Network  string             `json:"network"`
	ChainID  uint64             `json:"chainId"`
	Run      RunKind            `json:"run"`
	RunID    string             `json:"runId"`
	Deployer common.Address     `json:"deployer"`
	Records  []DeploymentRecord `json:"records"`
}

// NonceState is the guard's view of the deployer account
type NonceState struct {
	Account            common.Address
	LastConfirmedCount uint64
}
