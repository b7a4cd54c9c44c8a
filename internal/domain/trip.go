package domain

import "time"

// Represents a single trip row flowing through the pipeline.
//
// The raw coordinate strings are kept verbatim for the warehouse columns;
// Origin and Destination hold their parsed forms (nil when the string could
// not be parsed — such rows are still loaded, with NULL decomposed columns
// and Unknown location metadata, matching the source system's behavior).
// City, country and region fields are populated during enrichment.
type TripRecord struct {
	Region           string
	OriginCoord      string
	DestinationCoord string
	DepartureTime    time.Time
	Datasource       string

	Origin      *Coordinates
	Destination *Coordinates

	OriginCity         string
	OriginCountry      string
	DestinationCity    string
	DestinationCountry string
}
