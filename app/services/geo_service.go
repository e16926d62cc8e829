package services

import (
	"math"
	"strings"

	"github.com/mmutvidal/escapadas-go/models"
	"github.com/mmutvidal/escapadas-go/utils"
)

// airportCoord is a geographic position for one IATA code.
type airportCoord struct {
	Lat float64
	Lon float64
}

// airportCoords covers the origin markets and the destinations in the tag
// table. Airports outside this table keep whatever distance the provider
// supplied, or none at all.
var airportCoords = map[string]airportCoord{
	// Origin markets
	"PMI": {39.5517, 2.7388},
	"MAD": {40.4983, -3.5676},
	"BCN": {41.2971, 2.0785},

	// Norte / Centro Europa
	"CPH": {55.6181, 12.6561},
	"ARN": {59.6519, 17.9186},
	"GOT": {57.6628, 12.2798},
	"EDI": {55.9500, -3.3725},
	"ATH": {37.9364, 23.9472},
	"DUB": {53.4213, -6.2701},
	"HAM": {53.6304, 9.9882},
	"BER": {52.3667, 13.5033},
	"BUD": {47.4298, 19.2611},
	"DRS": {51.1328, 13.7672},
	"LEJ": {51.4324, 12.2416},
	"PRG": {50.1008, 14.2600},
	"VIE": {48.1103, 16.5697},
	"AMS": {52.3105, 4.7683},
	"CGN": {50.8659, 7.1427},
	"ZAG": {45.7429, 16.0688},
	"NUE": {49.4987, 11.0669},
	"BRU": {50.9014, 4.4844},
	"FRA": {50.0379, 8.5622},
	"WAW": {52.1657, 20.9671},
	"MUC": {48.3538, 11.7861},
	"ZRH": {47.4647, 8.5492},
	"BSL": {47.5896, 7.5299},

	// Londres low cost
	"LTN": {51.8747, -0.3683},
	"STN": {51.8860, 0.2389},
	"LGW": {51.1537, -0.1821},

	// Marruecos
	"RAK": {31.6069, -8.0363},

	// Portugal
	"LIS": {38.7813, -9.1359},
	"OPO": {41.2481, -8.6814},

	// Italia
	"NAP": {40.8860, 14.2908},
	"BLQ": {44.5354, 11.2887},
	"BGY": {45.6739, 9.7042},
	"FCO": {41.8003, 12.2389},
	"MXP": {45.6306, 8.7281},
	"PSA": {43.6839, 10.3927},
	"TSF": {45.6484, 12.1944},

	// Francia / Suiza
	"ORY": {48.7262, 2.3652},
	"GVA": {46.2381, 6.1090},
	"LYS": {45.7256, 5.0811},
	"MRS": {43.4393, 5.2214},
	"TLS": {43.6291, 1.3638},

	// España
	"SCQ": {42.8963, -8.4151},
	"SVQ": {37.4180, -5.8931},
	"AGP": {36.6749, -4.4991},
	"BIO": {43.3011, -2.9106},
	"GRX": {37.1887, -3.7774},
	"VIT": {42.8828, -2.7245},
	"ZAZ": {41.6662, -1.0416},
	"ALC": {38.2822, -0.5582},
	"VLC": {39.4893, -0.4816},
	"XRY": {36.7446, -6.0601},
	"OVD": {43.5636, -6.0346},
	"SDR": {43.4271, -3.8200},
	"LPA": {27.9319, -15.3866},
}

// GeoService enriches offers with distance and price-per-km when the
// provider did not supply them.
type GeoService struct {
	coords map[string]airportCoord
}

// NewGeoService creates a geo service over the built-in coordinate table
func NewGeoService() *GeoService {
	return &GeoService{coords: airportCoords}
}

// EnrichDistances fills DistanceKm and PricePerKm in place for every offer
// whose route is covered by the coordinate table. Already-populated values
// are left untouched.
func (g *GeoService) EnrichDistances(offers []*models.Offer) {
	for _, o := range offers {
		if o.DistanceKm == nil {
			if km, ok := g.Distance(o.Origin, o.Destination); ok {
				o.DistanceKm = utils.ToPtr(km)
			}
		}
		if o.PricePerKm == nil && o.DistanceKm != nil && *o.DistanceKm > 0 && o.Price > 0 {
			o.PricePerKm = utils.ToPtr(o.Price / *o.DistanceKm)
		}
	}
}

// Distance returns the great-circle distance in km between two airports,
// false when either code is not in the table.
func (g *GeoService) Distance(originIATA, destIATA string) (float64, bool) {
	a, ok := g.coords[strings.ToUpper(originIATA)]
	if !ok {
		return 0, false
	}
	b, ok := g.coords[strings.ToUpper(destIATA)]
	if !ok {
		return 0, false
	}
	return haversineKm(a, b), true
}

const earthRadiusKm = 6371.0

func haversineKm(a, b airportCoord) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
