package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var abiCmd = &cobra.Command{
	Use:     "abi",
	Short:   "Manage contract ABIs",
	GroupID: "contracts",
}

var abiUploadCmd = &cobra.Command{
	Use:   "upload <file|->",
	Short: "Register a contract ABI and print its hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abi, err := readABI(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w, err := openWallet(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer w.Close()

		hash, err := w.UploadABI(ctx, abi)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(map[string]string{"abi_hash": hash})
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

// readABI reads the ABI text from path, or from stdin when path is "-".
func readABI(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading abi: %w", err)
	}
	abi := strings.TrimSpace(string(data))
	if abi == "" {
		return "", fmt.Errorf("abi is empty")
	}
	return abi, nil
}

func init() {
	abiCmd.AddCommand(abiUploadCmd)
}
