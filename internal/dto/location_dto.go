package dto

// ReverseGeocodeResponse mirrors the nominatim /reverse payload, trimmed to
// the address fields the profile page uses.
type ReverseGeocodeResponse struct {
	Address GeocodeAddress `json:"address"`
}

type GeocodeAddress struct {
	City    string `json:"city,omitempty"`
	Town    string `json:"town,omitempty"`
	Village string `json:"village,omitempty"`
	Country string `json:"country,omitempty"`
}
