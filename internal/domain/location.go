package domain

// Resolved location metadata for a coordinate.
type Location struct {
	City    string
	Country string
	Region  string
}

// UnknownLocation is the sentinel stored when geocoding fails or returns
// no match. Enrichment always completes; it never propagates lookup errors.
var UnknownLocation = Location{City: "Unknown", Country: "Unknown", Region: "Unknown"}
