package plaza

// Fulfilment methods
const (
	FulfilmentByRetailer = "FBR"
	FulfilmentByBol      = "FBB"
)

// Order represents a Plaza order
type Order struct {
	OrderID             string `plaza:"OrderId"`
	DateTimeCustomer    string
	DateTimeDropShipper string
	CustomerDetails     *CustomerDetails
	OrderItems          []OrderItem
}

func (Order) ElementName() string { return "Order" }

// CustomerDetails holds the shipping and billing addresses of an order
type CustomerDetails struct {
	ShipmentDetails *ShipmentDetails
	BillingDetails  *BillingDetails
}

func (CustomerDetails) ElementName() string { return "CustomerDetails" }

// ShipmentDetails is the delivery address
type ShipmentDetails struct {
	SalutationCode          string
	Firstname               string
	Surname                 string
	Streetname              string
	Housenumber             string
	HousenumberExtended     string
	AddressSupplement       string
	ExtraAddressInformation string
	ZipCode                 string
	City                    string
	CountryCode             string
	Email                   string
	DeliveryPhoneNumber     string
	Company                 string
}

func (ShipmentDetails) ElementName() string { return "ShipmentDetails" }

// BillingDetails is the invoice address
type BillingDetails struct {
	SalutationCode          string
	Firstname               string
	Surname                 string
	Streetname              string
	Housenumber             string
	HousenumberExtended     string
	AddressSupplement       string
	ExtraAddressInformation string
	ZipCode                 string
	City                    string
	CountryCode             string
	Email                   string
	DeliveryPhoneNumber     string
	Company                 string
	VatNumber               string
	OrderReference          string
}

func (BillingDetails) ElementName() string { return "BillingDetails" }

// OrderItem is a single line of an order
type OrderItem struct {
	OrderItemID          string `plaza:"OrderItemId"`
	OrderID              string `plaza:"OrderId"`
	OrderDate            string
	EAN                  string
	OfferReference       string
	Title                string
	Quantity             string
	OfferPrice           string
	TransactionFee       string
	LatestDeliveryDate   string
	FulfilmentMethod     string
	PromisedDeliveryDate string
	OfferCondition       string
	CancelRequest        string
}

func (OrderItem) ElementName() string { return "OrderItem" }

// Shipment represents a shipment of one or more order items
type Shipment struct {
	ShipmentID           string `plaza:"ShipmentId"`
	ShipmentDate         string
	ExpectedDeliveryDate string
	ShipmentReference    string
	ShipmentItems        []ShipmentItem
	Transport            *Transport
}

func (Shipment) ElementName() string { return "Shipment" }

// ShipmentItem is an order item included in a shipment
type ShipmentItem struct {
	OrderItemID        string `plaza:"OrderItemId"`
	OrderID            string `plaza:"OrderId"`
	OrderDate          string
	LatestDeliveryDate string
	EAN                string
	Title              string
	Quantity           string
	OfferPrice         string
	OfferCondition     string
	OfferReference     string
	FulfilmentMethod   string
}

func (ShipmentItem) ElementName() string { return "ShipmentItem" }

// Transport describes the carrier of a shipment
type Transport struct {
	TransportID       string `plaza:"TransportId"`
	TransporterCode   string
	TrackAndTrace     string
	ShippingLabelID   string `plaza:"ShippingLabelId"`
	ShippingLabelCode string
}

func (Transport) ElementName() string { return "Transport" }

// ShipmentRequest confirms the shipment of an order item
type ShipmentRequest struct {
	OrderItemID          string `plaza:"OrderItemId"`
	ShipmentReference    string
	DateTime             string
	ExpectedDeliveryDate string
	Transport            *ShipmentRequestTransport
	ShippingLabelID      string `plaza:"ShippingLabelId"`
}

func (ShipmentRequest) ElementName() string { return "ShipmentRequest" }

// ShipmentRequestTransport is the transport block of a ShipmentRequest
type ShipmentRequestTransport struct {
	TransporterCode string
	TrackAndTrace   string
}

func (ShipmentRequestTransport) ElementName() string { return "Transport" }

// ChangeTransportRequest replaces the carrier details of a transport
type ChangeTransportRequest struct {
	TransporterCode string
	TrackAndTrace   string
}

func (ChangeTransportRequest) ElementName() string { return "ChangeTransportRequest" }

// Cancellation cancels an order item
type Cancellation struct {
	DateTime   string
	ReasonCode string
}

func (Cancellation) ElementName() string { return "Cancellation" }

// ReturnItem is a customer return awaiting handling
type ReturnItem struct {
	ReturnNumber           string
	OrderID                string `plaza:"OrderId"`
	ShipmentID             string `plaza:"ShipmentId"`
	EAN                    string
	Title                  string
	Quantity               string
	ReturnDateAnnouncement string
	ReturnReason           string
	ReturnReasonComments   string
	CustomerDetails        *ShipmentDetails
}

func (ReturnItem) ElementName() string { return "Item" }

// ReturnItemStatusUpdate handles a return
type ReturnItemStatusUpdate struct {
	StatusReason     string
	QuantityReturned string
}

func (ReturnItemStatusUpdate) ElementName() string { return "ReturnItemStatusUpdate" }

// Process status values
const (
	ProcessStatusPending = "PENDING"
	ProcessStatusSuccess = "SUCCESS"
	ProcessStatusFailure = "FAILURE"
	ProcessStatusTimeout = "TIMEOUT"
)

// ProcessStatus tracks an asynchronous job started by a mutating call
type ProcessStatus struct {
	ID              string `plaza:"id"`
	SellerID        string `plaza:"sellerId"`
	EntityID        string `plaza:"entityId"`
	EventType       string `plaza:"eventType"`
	Description     string `plaza:"description"`
	Status          string `plaza:"status"`
	ErrorMessage    string `plaza:"errorMessage"`
	CreateTimestamp string `plaza:"createTimestamp"`
}

func (ProcessStatus) ElementName() string { return "ProcessStatus" }

// Done returns true once the job left the pending state
func (p ProcessStatus) Done() bool {
	return p.Status != "" && p.Status != ProcessStatusPending
}

// Payment is a settlement for a period
type Payment struct {
	PaymentID        string `plaza:"PaymentId"`
	DateTimePayment  string
	PaymentAmount    string
	CreditAmount     string
	PaymentShipments []PaymentShipment
}

func (Payment) ElementName() string { return "Payment" }

// PaymentShipment is a shipment settled in a payment
type PaymentShipment struct {
	ShipmentID            string `plaza:"ShipmentId"`
	OrderID               string `plaza:"OrderId"`
	ShipmentAmount        string
	ShippingCostsAmount   string
	CommissionAmount      string
	PaymentShipmentAmount string
}

func (PaymentShipment) ElementName() string { return "PaymentShipment" }
