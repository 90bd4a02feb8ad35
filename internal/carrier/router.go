package carrier

import (
	"fmt"

	dErrors "qosic/pkg/domain-errors"
)

// countryCodeLen is the "229" country code prefix on normalized msisdns.
const countryCodeLen = 3

// Resolve maps a normalized phone number to the carrier owning its two-digit
// national prefix. Profiles are scanned in the order given: when two carriers
// are misconfigured with overlapping prefixes the first one wins. That bias
// is intentional so routing stays deterministic under misconfiguration.
func Resolve(phone string, profiles []*Profile) (*Profile, error) {
	if len(phone) < countryCodeLen+2 {
		return nil, dErrors.New(dErrors.CodeInvalidPhone,
			fmt.Sprintf("phone %q is too short to carry a carrier prefix", phone))
	}
	prefix := phone[countryCodeLen : countryCodeLen+2]
	for _, p := range profiles {
		if p.OwnsPrefix(prefix) {
			return p, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeCarrierNotFound,
		fmt.Sprintf("no carrier configured for prefix %s", prefix))
}

// ByName selects a profile by carrier name, used for refunds where the caller
// names the carrier instead of supplying a phone number.
func ByName(name string, profiles []*Profile) (*Profile, error) {
	for _, p := range profiles {
		if p.name == name {
			return p, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeCarrierNotFound,
		fmt.Sprintf("no carrier named %q is configured", name))
}
