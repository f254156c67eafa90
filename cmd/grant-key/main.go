// Package main provides a one-shot utility for signer grant key generation.
//
// It emits the asymmetric keypair used by delegation signer grant checks.
package main

import (
	"os"

	"github.com/louisbranch/claimledger/internal/platform/config"
	"github.com/louisbranch/claimledger/internal/tools/grantkey"
)

func main() {
	if err := grantkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate signer grant key: %v", err)
	}
}
