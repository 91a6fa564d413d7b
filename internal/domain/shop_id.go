package domain

import "regexp"

// shopIDPattern bounds shop identifiers to safe characters so a shop_id can
// never smuggle path or key syntax into per-tenant storage.
var shopIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateShopID rejects shop identifiers that are empty, too long, or
// contain anything outside [A-Za-z0-9_-]. The first character must be
// alphanumeric.
func ValidateShopID(shopID string) error {
	if !shopIDPattern.MatchString(shopID) {
		return ErrInvalidShopID
	}
	return nil
}
