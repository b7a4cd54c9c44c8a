package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/platform/obs"
	"trip-analytics-service/internal/ports"
)

// ORSGeocoder implements Geocoder using the OpenRouteService reverse
// geocoding endpoint (Pelias schema). External calls are retried with
// backoff; the adapter is safe for concurrent use.
type ORSGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
}

func NewORSGeocoder(apiKey string) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
	}, nil
}

type reverseResponse struct {
	Features []struct {
		Properties struct {
			Name    string `json:"name"`
			Country string `json:"country"`
			Region  string `json:"region"`
		} `json:"properties"`
	} `json:"features"`
}

// ReverseGeocode resolves a coordinate to its nearest named place.
func (o *ORSGeocoder) ReverseGeocode(
	ctx context.Context,
	coord domain.Coordinates,
) (_ domain.Location, err error) {
	defer obs.Time(ctx, "ors.ReverseGeocode")(&err)

	endpoint := o.baseURL + "/geocode/reverse"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("point.lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
		q.Set("point.lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Location{}, fmt.Errorf("execute reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Location{}, fmt.Errorf("decode reverse geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Location{}, fmt.Errorf("reverse geocode %s: %w", coord.Key(), ports.ErrLocationNotFound)
	}

	props := decoded.Features[0].Properties
	return domain.Location{
		City:    props.Name,
		Country: props.Country,
		Region:  props.Region,
	}, nil
}
