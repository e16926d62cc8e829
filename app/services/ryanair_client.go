package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmutvidal/escapadas-go/models"
)

// RyanairClient queries the public Ryanair fare-finder for round-trip fares.
type RyanairClient struct {
	BaseURL    string
	Currency   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewRyanairClient creates a Ryanair fare-finder client
func NewRyanairClient(baseURL, currency string, timeout time.Duration) *RyanairClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if currency == "" {
		currency = "EUR"
	}
	return &RyanairClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Currency:   currency,
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
	}
}

func (c *RyanairClient) Name() string { return "ryanair" }

// Fare-finder response shapes (v4 roundTripFares)

type ryanairAirport struct {
	IataCode string `json:"iataCode"`
	Name     string `json:"name"`
}

type ryanairPrice struct {
	Value        float64 `json:"value"`
	CurrencyCode string  `json:"currencyCode"`
}

type ryanairLeg struct {
	DepartureAirport ryanairAirport `json:"departureAirport"`
	ArrivalAirport   ryanairAirport `json:"arrivalAirport"`
	DepartureDate    string         `json:"departureDate"`
	Price            *ryanairPrice  `json:"price"`
}

type ryanairFare struct {
	Outbound ryanairLeg `json:"outbound"`
	Inbound  ryanairLeg `json:"inbound"`
}

type ryanairFaresResp struct {
	Fares []ryanairFare `json:"fares"`
}

// Search fetches round-trip fares departing and returning on the exact
// given dates. The total offer price is the sum of both legs.
func (c *RyanairClient) Search(ctx context.Context, origin string, departDate, returnDate time.Time) ([]*models.Offer, error) {
	depart := departDate.Format("2006-01-02")
	ret := returnDate.Format("2006-01-02")

	q := url.Values{}
	q.Set("departureAirportIataCode", strings.ToUpper(origin))
	q.Set("outboundDepartureDateFrom", depart)
	q.Set("outboundDepartureDateTo", depart)
	q.Set("inboundDepartureDateFrom", ret)
	q.Set("inboundDepartureDateTo", ret)
	q.Set("currency", c.Currency)
	q.Set("market", "es-es")
	q.Set("adultPaxCount", "1")

	endpoint := c.BaseURL + "/farfnd/v4/roundTripFares?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ryanair search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ryanair search returned status %d", resp.StatusCode)
	}

	var out ryanairFaresResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ryanair search decode failed: %w", err)
	}

	offers := make([]*models.Offer, 0, len(out.Fares))
	for _, fare := range out.Fares {
		if fare.Outbound.Price == nil || fare.Inbound.Price == nil {
			continue
		}
		dest := fare.Outbound.ArrivalAirport.IataCode
		offers = append(offers, &models.Offer{
			Origin:      strings.ToUpper(origin),
			Destination: strings.ToUpper(dest),
			Price:       fare.Outbound.Price.Value + fare.Inbound.Price.Value,
			StartDate:   fare.Outbound.DepartureDate,
			EndDate:     fare.Inbound.DepartureDate,
			Airline:     "Ryanair",
			Link:        buildRyanairLink(origin, dest, depart, ret),
		})
	}

	return offers, nil
}

// buildRyanairLink builds a direct link to the Ryanair flight selection page
// for the given route and dates.
func buildRyanairLink(origin, destination, departDate, returnDate string) string {
	q := url.Values{}
	q.Set("adults", "1")
	q.Set("teens", "0")
	q.Set("children", "0")
	q.Set("infants", "0")
	q.Set("dateOut", departDate)
	q.Set("dateIn", returnDate)
	q.Set("isReturn", "true")
	q.Set("originIata", strings.ToUpper(origin))
	q.Set("destinationIata", strings.ToUpper(destination))

	return "https://www.ryanair.com/es/es/trip/flights/select?" + q.Encode()
}
