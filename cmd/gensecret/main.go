// Generates signing keys for the token manager.
// Access and refresh tokens are signed with different keys, so it
// prints a fresh pair ready to paste into the environment.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const SecretKeyBytesLen = 32

func main() {
	fmt.Printf("ACCESS_TOKEN_SECRET=%s\n", newKey())
	fmt.Printf("REFRESH_TOKEN_SECRET=%s\n", newKey())
}

func newKey() string {
	b := make([]byte, SecretKeyBytesLen)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Printf("error while generating secret key: %v", err)
		os.Exit(1)
	}

	return hex.EncodeToString(b)
}
