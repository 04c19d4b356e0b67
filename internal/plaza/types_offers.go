package plaza

// Offer conditions
const (
	ConditionNew      = "NEW"
	ConditionAsNew    = "AS_NEW"
	ConditionGood     = "GOOD"
	ConditionReasonable = "REASONABLE"
	ConditionModerate = "MODERATE"
)

// RetailerOffer is a seller listing of a product
type RetailerOffer struct {
	EAN               string
	Condition         string
	Price             string
	DeliveryCode      string
	QuantityInStock   string
	UnreservedStock   string
	Publish           string
	ReferenceCode     string
	Description       string
	Title             string
	FulfillmentMethod string
	Status            *RetailerOfferStatus
}

func (RetailerOffer) ElementName() string { return "RetailerOffer" }

// RetailerOfferStatus reports whether an offer is published
type RetailerOfferStatus struct {
	Published    string
	ErrorCode    string
	ErrorMessage string
}

func (RetailerOfferStatus) ElementName() string { return "RetailerOfferStatus" }

// RetailerOfferIdentifier identifies an offer by EAN and condition
type RetailerOfferIdentifier struct {
	EAN       string
	Condition string
}

func (RetailerOfferIdentifier) ElementName() string { return "RetailerOfferIdentifier" }

// UpsertRequest creates or updates offers
type UpsertRequest struct {
	RetailerOffers []RetailerOffer `plaza:",flat"`
}

func (UpsertRequest) ElementName() string { return "UpsertRequest" }

// DeleteBulkRequest deletes offers
type DeleteBulkRequest struct {
	RetailerOfferIdentifiers []RetailerOfferIdentifier `plaza:",flat"`
}

func (DeleteBulkRequest) ElementName() string { return "DeleteBulkRequest" }

// OfferResponse is the result of a single offer lookup
type OfferResponse struct {
	RetailerOffers []RetailerOffer
}

func (OfferResponse) ElementName() string { return "RetrieveOffersResponse" }

// Commission is the fee bol.com charges for selling a product at a price
type Commission struct {
	EAN                       string
	Condition                 string
	Price                     string
	FixedAmount               string
	Percentage                string
	TotalCost                 string
	TotalCostWithoutReduction string
	Reductions                []Reduction
}

func (Commission) ElementName() string { return "Commission" }

// Reduction is a temporary commission discount
type Reduction struct {
	MaximumPrice  string
	CostReduction string
	StartDate     string
	EndDate       string
}

func (Reduction) ElementName() string { return "Reduction" }

// OfferFile points at the CSV export of the seller's own offers
type OfferFile struct {
	URL string `plaza:"Url"`
}

func (OfferFile) ElementName() string { return "OfferFile" }

// ReductionList is the reductions CSV together with the file name the API
// announced in its Content-Disposition header
type ReductionList struct {
	Filename string
	Content  []byte
}

// Inventory filter values
const (
	StockSufficient   = "sufficient"
	StockInsufficient = "insufficient"
	StateSaleable     = "saleable"
	StateUnsaleable   = "unsaleable"
)

// Inventory is one page of the FBB inventory
type Inventory struct {
	TotalCount     string
	TotalPageCount string
	Offers         []InventoryOffer
}

func (Inventory) ElementName() string { return "InventoryResponse" }

// InventoryOffer is the stock level of one product in the bol.com warehouse
type InventoryOffer struct {
	EAN      string
	BSKU     string
	Title    string
	Stock    string
	NCKStock string `plaza:"NCK_Stock"`
}

func (InventoryOffer) ElementName() string { return "Offer" }
