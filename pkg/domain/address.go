package domain

import "strings"

// Address is an opaque payee/purchaser identifier on the settlement rail.
// The service never interprets its contents beyond zero-checking; the rail
// decides what a valid address looks like.
type Address string

// ZeroAddress is the null address. It is never a valid recipient.
const ZeroAddress Address = ""

// IsZero reports whether the address is empty after trimming.
func (a Address) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

func (a Address) String() string {
	return string(a)
}

// Currency identifies the payment rail for a project: either the native
// currency marker or a fungible-token contract address.
type Currency string

// CurrencyNative marks payment in the rail's native value.
const CurrencyNative Currency = "native"

// IsNative reports whether the currency is the native marker.
func (c Currency) IsNative() bool {
	return c == CurrencyNative
}
