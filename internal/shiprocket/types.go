package shiprocket

import "time"

// Origin tags whether a result came from the live carrier API or from the
// deterministic mock generator. Callers receive the same shapes either way;
// the tag exists for diagnostics and logging.
type Origin string

const (
	OriginCarrier Origin = "carrier"
	OriginMock    Origin = "mock"
)

// Quote is one courier's priced offer for a parcel
type Quote struct {
	CourierID         int     `json:"courierId"`
	CourierName       string  `json:"courierName"`
	FreightCharge     float64 `json:"freightCharge"`
	CODCharge         float64 `json:"codCharge"`
	OtherCharges      float64 `json:"otherCharges"`
	Total             float64 `json:"total"`
	EstimatedDelivery string  `json:"estimatedDelivery"`
	Rating            float64 `json:"rating,omitempty"`
}

// QuoteSet is the result of a serviceability check
type QuoteSet struct {
	Origin Origin
	Quotes []Quote
}

// Cheapest returns the lowest-total quote, or nil when the set is empty
func (qs *QuoteSet) Cheapest() *Quote {
	var cheapest *Quote
	for i := range qs.Quotes {
		if cheapest == nil || qs.Quotes[i].Total < cheapest.Total {
			cheapest = &qs.Quotes[i]
		}
	}
	return cheapest
}

// ParcelItem describes one order line for shipment creation
type ParcelItem struct {
	Name     string
	SKU      string
	Quantity int
	Price    float64
}

// ShipmentRequest carries everything the carrier needs to create a shipment
type ShipmentRequest struct {
	OrderNumber    string
	CustomerName   string
	CustomerPhone  string
	Street         string
	City           string
	State          string
	DestinationPin string
	Country        string
	Items          []ParcelItem
	DeclaredValue  float64
	CashOnDelivery bool
	WeightKg       float64
}

// ShipmentResult is the outcome of shipment creation
type ShipmentResult struct {
	Origin            Origin
	ShipmentID        string
	AWB               string
	CourierName       string
	EstimatedDelivery time.Time
}

// TrackingScan is one raw carrier tracking event. Remark is free text from
// the courier and is frequently absent.
type TrackingScan struct {
	Status   string
	Activity string
	Location string
	Remark   string
	Time     time.Time
}

// TrackingInfo is the carrier's view of a shipment in transit
type TrackingInfo struct {
	Origin        Origin
	AWB           string
	CurrentStatus string
	CourierName   string
	ETA           *time.Time
	History       []TrackingScan
}
