package domain

import "strings"

// ValidAddress reports whether s looks like an EVM wallet address:
// "0x" prefix and 42 characters total.
func ValidAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && len(s) == 42
}

// FilterAddresses splits candidates into valid addresses (original order
// preserved) and a count of rejected entries. Invalid addresses never reach
// the network.
func FilterAddresses(candidates []string) (valid []string, invalid int) {
	for _, c := range candidates {
		if ValidAddress(c) {
			valid = append(valid, c)
		} else {
			invalid++
		}
	}
	return valid, invalid
}
