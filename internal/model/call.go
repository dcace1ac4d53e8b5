package model

import "strings"

// ContractCall addresses one method of a deployed contract. ABIHash refers
// to an ABI previously registered with UploadABI.
type ContractCall struct {
	ContractAddress string `json:"contract_address"`
	ABIHash         string `json:"abi_hash"`
	Method          string `json:"method"`
	// Args is passed through as a single string; see JoinArgs.
	Args string `json:"args"`
}

// ArgsSeparator joins multiple arguments into the single args string.
const ArgsSeparator = ","

// JoinArgs encodes several method arguments into the args string the
// backend expects.
func JoinArgs(args ...string) string {
	return strings.Join(args, ArgsSeparator)
}
