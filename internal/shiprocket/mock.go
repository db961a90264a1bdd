package shiprocket

import (
	"fmt"
	"hash/fnv"
	"time"
)

// The mock generator synthesizes plausible carrier data when the real backend
// is unreachable or unconfigured. Output is deterministic for a given input so
// repeated calls (and tests) see stable AWBs, charges and histories.

const mockAWBPrefix = "MOCKSR"

func seed(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return h.Sum64()
}

var mockCouriers = []struct {
	id     int
	name   string
	base   float64
	perKg  float64
	rating float64
	etd    string
}{
	{1001, "Velocity Express", 45, 22, 4.4, "2-3 days"},
	{1002, "BlueDart Surface", 60, 28, 4.7, "1-2 days"},
	{1003, "EcomCourier Lite", 38, 18, 4.0, "3-5 days"},
}

// MockQuotes synthesizes serviceability quotes for a destination
func MockQuotes(deliveryPin string, weightKg float64, cod bool, declaredValue float64) []Quote {
	if weightKg <= 0 {
		weightKg = 0.5
	}
	s := seed(deliveryPin, fmt.Sprintf("%.2f", weightKg))

	quotes := make([]Quote, 0, len(mockCouriers))
	for i, courier := range mockCouriers {
		freight := courier.base + courier.perKg*weightKg + float64((s>>(uint(i)*8))%7)
		var codCharge float64
		if cod {
			codCharge = 30 + declaredValue*0.01
		}
		other := 5.0
		quotes = append(quotes, Quote{
			CourierID:         courier.id,
			CourierName:       courier.name,
			FreightCharge:     round2(freight),
			CODCharge:         round2(codCharge),
			OtherCharges:      other,
			Total:             round2(freight + codCharge + other),
			EstimatedDelivery: courier.etd,
			Rating:            courier.rating,
		})
	}
	return quotes
}

// MockShipment synthesizes a shipment creation result with a 3-day delivery
// estimate and a distinctly prefixed AWB
func MockShipment(orderNumber string, now time.Time) *ShipmentResult {
	s := seed(orderNumber)
	courier := mockCouriers[s%uint64(len(mockCouriers))]
	return &ShipmentResult{
		Origin:            OriginMock,
		ShipmentID:        fmt.Sprintf("%d", 500000+s%400000),
		AWB:               fmt.Sprintf("%s%010d", mockAWBPrefix, s%10000000000),
		CourierName:       courier.name,
		EstimatedDelivery: now.AddDate(0, 0, 3),
	}
}

// MockTracking synthesizes a five-stage tracking history ending in a delivery
// one day in the past
func MockTracking(awb string, now time.Time) *TrackingInfo {
	s := seed(awb)
	courier := mockCouriers[s%uint64(len(mockCouriers))]

	stages := []struct {
		status   string
		activity string
		location string
		remark   string
	}{
		{"Pickup Scheduled", "Pickup has been scheduled with the courier", "New Delhi", ""},
		{"Picked Up", "Shipment picked up from the seller warehouse", "New Delhi", ""},
		{"In Transit", "Shipment departed from origin sorting facility", "Gurugram Hub", ""},
		{"Out For Delivery", "Shipment is out for delivery", "Destination City", ""},
		{"Delivered", "Shipment delivered to the consignee", "Destination City", "Signed by the consignee"},
	}

	delivered := now.AddDate(0, 0, -1)
	history := make([]TrackingScan, 0, len(stages))
	for i, stage := range stages {
		history = append(history, TrackingScan{
			Status:   stage.status,
			Activity: stage.activity,
			Location: stage.location,
			Remark:   stage.remark,
			Time:     delivered.AddDate(0, 0, -(len(stages) - 1 - i)),
		})
	}

	return &TrackingInfo{
		Origin:        OriginMock,
		AWB:           awb,
		CurrentStatus: "Delivered",
		CourierName:   courier.name,
		ETA:           &delivered,
		History:       history,
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
