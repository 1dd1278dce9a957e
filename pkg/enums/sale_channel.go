package enums

import "fmt"

// SaleChannel controls where a product can be sold.
type SaleChannel string

const (
	SaleChannelBoth        SaleChannel = "BOTH"
	SaleChannelOfflineOnly SaleChannel = "OFFLINE_ONLY"
	SaleChannelOnlineOnly  SaleChannel = "ONLINE_ONLY"
)

var validSaleChannels = []SaleChannel{
	SaleChannelBoth,
	SaleChannelOfflineOnly,
	SaleChannelOnlineOnly,
}

// String implements fmt.Stringer.
func (c SaleChannel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known SaleChannel.
func (c SaleChannel) IsValid() bool {
	for _, candidate := range validSaleChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// SellsOnline reports whether the channel allows remote buyer checkout.
func (c SaleChannel) SellsOnline() bool {
	return c == SaleChannelBoth || c == SaleChannelOnlineOnly
}

// SellsInStore reports whether the channel allows point-of-sale entry.
func (c SaleChannel) SellsInStore() bool {
	return c == SaleChannelBoth || c == SaleChannelOfflineOnly
}

// ParseSaleChannel converts raw input into a SaleChannel.
func ParseSaleChannel(value string) (SaleChannel, error) {
	for _, candidate := range validSaleChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale channel %q", value)
}
