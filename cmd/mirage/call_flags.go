package main

import (
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/mirage/internal/model"
)

// addCallFlags registers the flags describing a contract call.
func addCallFlags(cmd *cobra.Command) {
	cmd.Flags().String("contract", "", "contract address (required)")
	cmd.Flags().String("abi-hash", "", "hash of a registered ABI (required)")
	cmd.Flags().String("method", "", "contract method (required)")
	cmd.Flags().StringArray("arg", nil, "method argument (repeatable)")
	cmd.Flags().String("args", "", "pre-encoded args string (overrides --arg)")
}

// callFromFlags builds and validates a contract call from addCallFlags flags.
func callFromFlags(cmd *cobra.Command) (model.ContractCall, error) {
	contract, _ := cmd.Flags().GetString("contract")
	abiHash, _ := cmd.Flags().GetString("abi-hash")
	method, _ := cmd.Flags().GetString("method")
	args, _ := cmd.Flags().GetStringArray("arg")
	raw, _ := cmd.Flags().GetString("args")

	call := model.ContractCall{
		ContractAddress: contract,
		ABIHash:         abiHash,
		Method:          method,
		Args:            model.JoinArgs(args...),
	}
	if cmd.Flags().Changed("args") {
		call.Args = raw
	}
	if err := model.ValidateContractCall(&call); err != nil {
		return model.ContractCall{}, err
	}
	return call, nil
}
