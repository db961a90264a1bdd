package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/config"
)

// Client talks to the Shiprocket external API. Authentication is a login call
// returning a bearer token; the token is cached until shortly before expiry.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a new Shiprocket API client
func NewClient(cfg config.ShiprocketConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:  baseURL,
		email:    cfg.Email,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// HasCredentials reports whether the client can authenticate at all
func (c *Client) HasCredentials() bool {
	return c.email != "" && c.password != ""
}

type loginResponse struct {
	Token string `json:"token"`
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body := map[string]string{"email": c.email, "password": c.password}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response missing token")
	}

	// Shiprocket tokens last 10 days; refresh well before that.
	c.token = resp.Token
	c.tokenExpiry = time.Now().Add(24 * time.Hour)
	return c.token, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, reqBody, respBody interface{}) error {
	var reader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("shiprocket API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if respBody != nil {
		if err := json.Unmarshal(body, respBody); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

type serviceabilityResponse struct {
	Data struct {
		AvailableCourierCompanies []struct {
			CourierCompanyID int     `json:"courier_company_id"`
			CourierName      string  `json:"courier_name"`
			FreightCharge    float64 `json:"freight_charge"`
			CODCharges       float64 `json:"cod_charges"`
			OtherCharges     float64 `json:"other_charges"`
			Rate             float64 `json:"rate"`
			ETD              string  `json:"etd"`
			Rating           float64 `json:"rating"`
		} `json:"available_courier_companies"`
	} `json:"data"`
}

// Serviceability fetches courier quotes for a destination pincode
func (c *Client) Serviceability(ctx context.Context, pickupPin, deliveryPin string, weightKg float64, cod bool, declaredValue float64) ([]Quote, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	codFlag := "0"
	if cod {
		codFlag = "1"
	}
	query := url.Values{}
	query.Set("pickup_postcode", pickupPin)
	query.Set("delivery_postcode", deliveryPin)
	query.Set("weight", fmt.Sprintf("%.2f", weightKg))
	query.Set("cod", codFlag)
	query.Set("declared_value", fmt.Sprintf("%.2f", declaredValue))

	var resp serviceabilityResponse
	if err := c.do(ctx, http.MethodGet, "/courier/serviceability/?"+query.Encode(), token, nil, &resp); err != nil {
		return nil, err
	}

	couriers := resp.Data.AvailableCourierCompanies
	if len(couriers) == 0 {
		return nil, fmt.Errorf("serviceability response has no couriers")
	}

	quotes := make([]Quote, 0, len(couriers))
	for _, courier := range couriers {
		total := courier.Rate
		if total == 0 {
			total = courier.FreightCharge + courier.CODCharges + courier.OtherCharges
		}
		quotes = append(quotes, Quote{
			CourierID:         courier.CourierCompanyID,
			CourierName:       courier.CourierName,
			FreightCharge:     courier.FreightCharge,
			CODCharge:         courier.CODCharges,
			OtherCharges:      courier.OtherCharges,
			Total:             total,
			EstimatedDelivery: courier.ETD,
			Rating:            courier.Rating,
		})
	}
	return quotes, nil
}

type createOrderResponse struct {
	OrderID    json.Number `json:"order_id"`
	ShipmentID json.Number `json:"shipment_id"`
}

type assignAWBResponse struct {
	Response struct {
		Data struct {
			AWBCode     string `json:"awb_code"`
			CourierName string `json:"courier_name"`
		} `json:"data"`
	} `json:"response"`
}

// CreateShipment registers an adhoc order with the carrier and assigns an AWB
func (c *Client) CreateShipment(ctx context.Context, req ShipmentRequest, pickupLocation string) (*ShipmentResult, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]interface{}, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, map[string]interface{}{
			"name":          item.Name,
			"sku":           item.SKU,
			"units":         item.Quantity,
			"selling_price": item.Price,
		})
	}

	paymentMethod := "Prepaid"
	if req.CashOnDelivery {
		paymentMethod = "COD"
	}

	orderBody := map[string]interface{}{
		"order_id":              req.OrderNumber,
		"order_date":            time.Now().Format("2006-01-02 15:04"),
		"pickup_location":       pickupLocation,
		"billing_customer_name": req.CustomerName,
		"billing_address":       req.Street,
		"billing_city":          req.City,
		"billing_state":         req.State,
		"billing_pincode":       req.DestinationPin,
		"billing_country":       req.Country,
		"billing_phone":         req.CustomerPhone,
		"shipping_is_billing":   true,
		"order_items":           items,
		"payment_method":        paymentMethod,
		"sub_total":             req.DeclaredValue,
		"weight":                req.WeightKg,
		"length":                10,
		"breadth":               10,
		"height":                10,
	}

	var orderResp createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders/create/adhoc", token, orderBody, &orderResp); err != nil {
		return nil, err
	}
	if orderResp.ShipmentID.String() == "" {
		return nil, fmt.Errorf("create order response missing shipment_id")
	}

	var awbResp assignAWBResponse
	awbBody := map[string]interface{}{"shipment_id": orderResp.ShipmentID.String()}
	if err := c.do(ctx, http.MethodPost, "/courier/assign/awb", token, awbBody, &awbResp); err != nil {
		return nil, err
	}
	if awbResp.Response.Data.AWBCode == "" {
		return nil, fmt.Errorf("assign awb response missing awb_code")
	}

	return &ShipmentResult{
		Origin:            OriginCarrier,
		ShipmentID:        orderResp.ShipmentID.String(),
		AWB:               awbResp.Response.Data.AWBCode,
		CourierName:       awbResp.Response.Data.CourierName,
		EstimatedDelivery: time.Now().AddDate(0, 0, 5),
	}, nil
}

type trackResponse struct {
	TrackingData struct {
		ShipmentStatus int `json:"shipment_status"`
		ShipmentTrack  []struct {
			CurrentStatus string `json:"current_status"`
			Courier       string `json:"courier_name"`
			EDD           string `json:"edd"`
		} `json:"shipment_track"`
		ShipmentTrackActivities []struct {
			Date     string `json:"date"`
			Status   string `json:"sr-status-label"`
			Activity string `json:"activity"`
			Location string `json:"location"`
			Remark   string `json:"remark"`
		} `json:"shipment_track_activities"`
	} `json:"tracking_data"`
}

// Track fetches live tracking history for an AWB
func (c *Client) Track(ctx context.Context, awb string) (*TrackingInfo, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	var resp trackResponse
	if err := c.do(ctx, http.MethodGet, "/courier/track/awb/"+url.PathEscape(awb), token, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.TrackingData.ShipmentTrack) == 0 {
		return nil, fmt.Errorf("track response missing shipment_track")
	}

	track := resp.TrackingData.ShipmentTrack[0]
	info := &TrackingInfo{
		Origin:        OriginCarrier,
		AWB:           awb,
		CurrentStatus: track.CurrentStatus,
		CourierName:   track.Courier,
	}
	if track.EDD != "" {
		if edd, err := time.Parse("2006-01-02 15:04:05", track.EDD); err == nil {
			info.ETA = &edd
		}
	}

	for _, activity := range resp.TrackingData.ShipmentTrackActivities {
		scan := TrackingScan{
			Status:   activity.Status,
			Activity: activity.Activity,
			Location: activity.Location,
			Remark:   activity.Remark,
		}
		if ts, err := time.Parse("2006-01-02 15:04:05", activity.Date); err == nil {
			scan.Time = ts
		}
		info.History = append(info.History, scan)
	}
	return info, nil
}
