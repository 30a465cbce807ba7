package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an API key",
	Long: `Generate a random API key suitable for SANHEDRIN_API_KEYS.

The key is printed to stdout; configure the server with it and pass it
to clients via --api-key or the Authorization header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		fmt.Printf("shk_%s\n", base64.RawURLEncoding.EncodeToString(buf))
		return nil
	},
}
