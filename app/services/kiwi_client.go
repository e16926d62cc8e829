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
	"github.com/mmutvidal/escapadas-go/utils"
)

// KiwiClient queries the Kiwi Tequila search API for round-trip offers.
type KiwiClient struct {
	BaseURL    string
	APIKey     string
	Currency   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewKiwiClient creates a Tequila search client
func NewKiwiClient(baseURL, apiKey, currency string, timeout time.Duration) *KiwiClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if currency == "" {
		currency = "EUR"
	}
	return &KiwiClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Currency:   currency,
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
	}
}

func (c *KiwiClient) Name() string { return "kiwi" }

type kiwiItinerary struct {
	FlyFrom        string   `json:"flyFrom"`
	FlyTo          string   `json:"flyTo"`
	Price          float64  `json:"price"`
	Airlines       []string `json:"airlines"`
	Distance       float64  `json:"distance"`
	LocalDeparture string   `json:"local_departure"`
	LocalArrival   string   `json:"local_arrival"`
	DeepLink       string   `json:"deep_link"`
	Route          []struct {
		Return         int    `json:"return"`
		LocalDeparture string `json:"local_departure"`
	} `json:"route"`
}

type kiwiSearchResp struct {
	Data []kiwiItinerary `json:"data"`
}

// Search fetches round-trip itineraries for the exact date pair. Tequila
// reports one-way distance in km, which also yields price-per-km.
func (c *KiwiClient) Search(ctx context.Context, origin string, departDate, returnDate time.Time) ([]*models.Offer, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("kiwi: missing API key")
	}

	dateStr := departDate.Format("02/01/2006")
	retStr := returnDate.Format("02/01/2006")

	q := url.Values{}
	q.Set("fly_from", strings.ToUpper(origin))
	q.Set("date_from", dateStr)
	q.Set("date_to", dateStr)
	q.Set("return_from", retStr)
	q.Set("return_to", retStr)
	q.Set("curr", c.Currency)
	q.Set("flight_type", "round")
	q.Set("adults", "1")
	q.Set("limit", "200")

	endpoint := c.BaseURL + "/v2/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kiwi search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kiwi search returned status %d", resp.StatusCode)
	}

	var out kiwiSearchResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("kiwi search decode failed: %w", err)
	}

	offers := make([]*models.Offer, 0, len(out.Data))
	for _, it := range out.Data {
		offer := &models.Offer{
			Origin:      strings.ToUpper(it.FlyFrom),
			Destination: strings.ToUpper(it.FlyTo),
			Price:       it.Price,
			StartDate:   it.LocalDeparture,
			EndDate:     returnLegDeparture(it),
			Airline:     firstAirline(it.Airlines),
			Link:        it.DeepLink,
		}
		if it.Distance > 0 {
			offer.DistanceKm = utils.ToPtr(it.Distance)
			if it.Price > 0 {
				offer.PricePerKm = utils.ToPtr(it.Price / it.Distance)
			}
		}
		offers = append(offers, offer)
	}

	return offers, nil
}

// returnLegDeparture finds the departure of the first return-leg segment;
// falls back to the itinerary arrival when the route breakdown is missing.
func returnLegDeparture(it kiwiItinerary) string {
	for _, leg := range it.Route {
		if leg.Return == 1 {
			return leg.LocalDeparture
		}
	}
	return it.LocalArrival
}

func firstAirline(airlines []string) string {
	if len(airlines) == 0 {
		return ""
	}
	return airlines[0]
}
