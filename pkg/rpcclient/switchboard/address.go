package switchboard

import (
	"github.com/aptos-labs/aptos-go-sdk"
	"golang.org/x/crypto/sha3"
)

// resourceAccountScheme is the authentication key scheme byte of resource
// accounts.
const resourceAccountScheme = 0xFF

// ResourceAccountAddress returns the address of the resource account created
// by the source account with the given seed.
func ResourceAccountAddress(source aptos.AccountAddress, seed []byte) aptos.AccountAddress {
	h := sha3.New256()
	h.Write(source[:])
	h.Write(seed)
	h.Write([]byte{resourceAccountScheme})
	var addr aptos.AccountAddress
	copy(addr[:], h.Sum(nil))
	return addr
}
