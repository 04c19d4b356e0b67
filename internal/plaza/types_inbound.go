package plaza

// Product label formats
const (
	LabelFormatAveryJ8159  = "AVERY_J8159"
	LabelFormatAveryJ8160  = "AVERY_J8160"
	LabelFormatAvery3474   = "AVERY_3474"
	LabelFormatDymo99012   = "DYMO_99012"
	LabelFormatBrotherDK11208D = "BROTHER_DK11208D"
	LabelFormatZebraZPerform1000T = "ZEBRA_Z_PERFORM_1000T"
)

// TimeSlot is a delivery window at the warehouse
type TimeSlot struct {
	Start string
	End   string
}

func (TimeSlot) ElementName() string { return "TimeSlot" }

// DeliveryWindowTimeSlot is an available delivery window
type DeliveryWindowTimeSlot struct {
	Start string
	End   string
}

func (DeliveryWindowTimeSlot) ElementName() string { return "DeliveryWindowTimeSlot" }

// FbbTransporter is the carrier delivering an inbound
type FbbTransporter struct {
	Code string
	Name string
}

func (FbbTransporter) ElementName() string { return "FbbTransporter" }

// InboundProduct is a product announced in an inbound
type InboundProduct struct {
	EAN               string
	BSKU              string
	AnnouncedQuantity string
	ReceivedQuantity  string
}

func (InboundProduct) ElementName() string { return "Product" }

// InboundStateTransition records a state change of an inbound
type InboundStateTransition struct {
	State     string
	StateDate string
}

func (InboundStateTransition) ElementName() string { return "InboundStateTransition" }

// InboundRequest announces a shipment of stock to the bol.com warehouse
type InboundRequest struct {
	Reference        string
	TimeSlot         *TimeSlot
	FbbTransporter   *FbbTransporter
	LabellingService string
	Products         []InboundProduct
}

func (InboundRequest) ElementName() string { return "InboundRequest" }

// Inbound is an announced shipment of stock
type Inbound struct {
	ID                string `plaza:"Id"`
	Reference         string
	CreationDate      string
	State             string
	LabellingService  string
	AnnouncedBSKUs    string
	AnnouncedQuantity string
	ReceivedBSKUs     string
	ReceivedQuantity  string
	TimeSlot          *TimeSlot
	FbbTransporter    *FbbTransporter
	Products          []InboundProduct
	StateTransitions  []InboundStateTransition
}

func (Inbound) ElementName() string { return "Inbound" }

// Inbounds is one page of the inbound list
type Inbounds struct {
	TotalCount     string
	TotalPageCount string
	Inbounds       []Inbound `plaza:",flat"`
}

func (Inbounds) ElementName() string { return "Inbounds" }

// InboundProductlabelsRequest asks for printable product labels
type InboundProductlabelsRequest struct {
	Productlabels []Productlabel `plaza:",flat"`
}

func (InboundProductlabelsRequest) ElementName() string { return "Productlabels" }

// Productlabel is the number of labels to print for one EAN
type Productlabel struct {
	EAN      string
	Quantity string
}

func (Productlabel) ElementName() string { return "Productlabel" }
