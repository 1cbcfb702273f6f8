package models

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Artifact is a compiled contract loaded from the artifacts directory
type Artifact struct {
	Name     string
	Path     string
	ABI      abi.ABI
	Bytecode []byte
}
