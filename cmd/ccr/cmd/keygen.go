package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evote-ccr/control-component/module/signature"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing key pair",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := signature.GenerateKey()
		if err != nil {
			return err
		}
		signer, err := signature.NewKeySignerFromHex("", key)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "private: %s\npublic:  %s\n", key, signer.PublicKeyHex())
		return nil
	},
}
