package stellar

const (
	addressLength = 56
	addressPrefix = 'G'
)

// IsValidAddress reports whether the provided string is a well-formed Stellar
// public key: 56 characters starting with 'G'. It is a pure predicate and
// never reaches the network; callers must short-circuit on a false result
// instead of handing the address to the gateway.
func IsValidAddress(address string) bool {
	if len(address) != addressLength {
		return false
	}
	return address[0] == addressPrefix
}
