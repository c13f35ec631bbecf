package orders

import "strings"

// Order statuses accepted by the status filter endpoint.
const (
	StatusProcessing = "PROCESSING"
	StatusShipped    = "SHIPPED"
	StatusDelivered  = "DELIVERED"
	StatusCancelled  = "CANCELLED"
)

var validStatuses = []string{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// IsValidStatus reports whether status (case-insensitive) is one of the
// known order statuses.
func IsValidStatus(status string) bool {
	upper := strings.ToUpper(status)
	for _, s := range validStatuses {
		if upper == s {
			return true
		}
	}
	return false
}

// Order is a customer order as returned by the order endpoints. Dates are
// passed through as the server formats them.
type Order struct {
	ID              int64   `json:"id"`
	OrderNumber     string  `json:"orderNumber"`
	CustomerID      int64   `json:"customerId"`
	Status          string  `json:"status"`
	TotalAmount     float64 `json:"totalAmount"`
	ShippingAddress string  `json:"shippingAddress"`
	CreatedDate     string  `json:"createdDate"`
	UpdatedDate     string  `json:"updatedDate,omitempty"`
}

// Tracking is the shipment tracking payload for an order.
type Tracking struct {
	OrderNumber       string `json:"orderNumber"`
	Status            string `json:"status"`
	EstimatedDelivery string `json:"estimatedDelivery,omitempty"`
	CurrentLocation   string `json:"currentLocation,omitempty"`
	TrackingNumber    string `json:"trackingNumber,omitempty"`
	Carrier           string `json:"carrier,omitempty"`
	LastUpdate        string `json:"lastUpdate,omitempty"`
	Message           string `json:"message,omitempty"`
}
