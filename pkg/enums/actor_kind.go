package enums

import "fmt"

// ActorKind distinguishes the two disjoint user kinds that can move stock
// or own orders. Sellers and buyers live in separate tables, so ledger rows
// tag the kind explicitly instead of pointing at a single user table.
type ActorKind string

const (
	ActorKindSeller ActorKind = "seller"
	ActorKindBuyer  ActorKind = "buyer"
)

var validActorKinds = []ActorKind{
	ActorKindSeller,
	ActorKindBuyer,
}

// String implements fmt.Stringer.
func (k ActorKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ActorKind.
func (k ActorKind) IsValid() bool {
	for _, candidate := range validActorKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseActorKind converts raw input into an ActorKind.
func ParseActorKind(value string) (ActorKind, error) {
	for _, candidate := range validActorKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor kind %q", value)
}
