package blockchain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EventAddress returns field from the first log matching event. Indexed
// fields come from the topics, the rest from the data.
func EventAddress(parsed *abi.ABI, logs []*types.Log, event, field string) (common.Address, error) {
	ev, ok := parsed.Events[event]
	if !ok {
		return common.Address{}, fmt.Errorf("event %s is not in the ABI", event)
	}

	for _, l := range logs {
		if len(l.Topics) == 0 || l.Topics[0] != ev.ID {
			continue
		}

		decoded := make(map[string]any)
		var indexed abi.Arguments
		for _, input := range ev.Inputs {
			if input.Indexed {
				indexed = append(indexed, input)
			}
		}
		if len(indexed) > 0 {
			if err := abi.ParseTopicsIntoMap(decoded, indexed, l.Topics[1:]); err != nil {
				return common.Address{}, fmt.Errorf("failed to parse %s topics: %w", event, err)
			}
		}
		if len(l.Data) > 0 {
			if err := ev.Inputs.UnpackIntoMap(decoded, l.Data); err != nil {
				return common.Address{}, fmt.Errorf("failed to unpack %s data: %w", event, err)
			}
		}

		v, ok := decoded[field]
		if !ok {
			return common.Address{}, fmt.Errorf("event %s has no field %s", event, field)
		}
		addr, ok := v.(common.Address)
		if !ok {
			return common.Address{}, fmt.Errorf("field %s of %s is %T, not an address", field, event, v)
		}
		return addr, nil
	}
	return common.Address{}, fmt.Errorf("transaction emitted no %s event", event)
}
