package plaza

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_OmitsEmptyAttributesAndSetsNamespace(t *testing.T) {
	data, err := Marshal(Cancellation{DateTime: "2016-02-17T10:00:00", ReasonCode: "OUT_OF_STOCK"}, ServicesNamespace("2"))
	require.NoError(t, err)

	xml := string(data)
	assert.Contains(t, xml, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, xml, `<Cancellation xmlns="https://plazaapi.bol.com/services/xsd/v2/plazaapi.xsd">`)
	assert.Contains(t, xml, "<DateTime>2016-02-17T10:00:00</DateTime>")
	assert.Contains(t, xml, "<ReasonCode>OUT_OF_STOCK</ReasonCode>")

	data, err = Marshal(&Cancellation{ReasonCode: "X"}, "")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "DateTime")
	assert.NotContains(t, string(data), "xmlns")
}

func TestMarshal_KeepsDeclaredOrder(t *testing.T) {
	data, err := Marshal(ShipmentRequest{
		OrderItemID:       "123",
		ShipmentReference: "ref",
		Transport:         &ShipmentRequestTransport{TransporterCode: "TNT", TrackAndTrace: "3S123"},
	}, ServicesNamespace("2.1"))
	require.NoError(t, err)

	xml := string(data)
	item := strings.Index(xml, "<OrderItemId>")
	ref := strings.Index(xml, "<ShipmentReference>")
	transport := strings.Index(xml, "<Transport>")
	require.True(t, item > 0 && ref > 0 && transport > 0)
	assert.Less(t, item, ref)
	assert.Less(t, ref, transport)
	assert.Contains(t, xml, "<TransporterCode>TNT</TransporterCode>")
}

func TestMarshal_FlatList(t *testing.T) {
	data, err := Marshal(DeleteBulkRequest{
		RetailerOfferIdentifiers: []RetailerOfferIdentifier{
			{EAN: "0000007740404", Condition: ConditionNew},
			{EAN: "0000007740405", Condition: ConditionGood},
		},
	}, OffersNamespace)
	require.NoError(t, err)

	xml := string(data)
	assert.Equal(t, 2, strings.Count(xml, "<RetailerOfferIdentifier>"))
	assert.NotContains(t, xml, "<RetailerOfferIdentifiers>")
}

func TestMarshal_RoundTrip(t *testing.T) {
	in := Order{
		OrderID:          "4123456789",
		DateTimeCustomer: "2016-02-17T10:00:00",
		CustomerDetails: &CustomerDetails{
			ShipmentDetails: &ShipmentDetails{Firstname: "Jan", Surname: "Jansen", City: "Utrecht"},
			BillingDetails:  &BillingDetails{Firstname: "Jan", VatNumber: "NL123"},
		},
		OrderItems: []OrderItem{
			{OrderItemID: "1", EAN: "8712626055143", Quantity: "1"},
			{OrderItemID: "2", EAN: "8712626055150", Quantity: "3"},
		},
	}

	data, err := Marshal(in, "")
	require.NoError(t, err)

	var out Order
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshal_FindsDescendantAndIgnoresUnknown(t *testing.T) {
	body := `<?xml version="1.0"?>
<Wrapper>
  <Something>ignored</Something>
  <ProcessStatus>
    <id>1</id>
    <entityId>987</entityId>
    <status>PENDING</status>
    <unknownField>x</unknownField>
  </ProcessStatus>
</Wrapper>`

	var ps ProcessStatus
	require.NoError(t, Unmarshal([]byte(body), &ps))
	assert.Equal(t, "1", ps.ID)
	assert.Equal(t, "987", ps.EntityID)
	assert.Equal(t, ProcessStatusPending, ps.Status)
	assert.Empty(t, ps.ErrorMessage)
	assert.False(t, ps.Done())
}

func TestUnmarshal_RejectsNonPointer(t *testing.T) {
	err := Unmarshal([]byte("<ProcessStatus/>"), ProcessStatus{})
	assert.Error(t, err)
}

func TestUnmarshal_MalformedInput(t *testing.T) {
	var ps ProcessStatus
	err := Unmarshal([]byte("not xml <<<"), &ps)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)

	var apiErr *APIError
	assert.NotErrorAs(t, err, &apiErr)
}

func TestUnmarshalCollection(t *testing.T) {
	body := `<Orders xmlns="https://plazaapi.bol.com/services/xsd/v2.1/plazaapi.xsd">
  <Order><OrderId>1</OrderId></Order>
  <Order><OrderId>2</OrderId><OrderItems><OrderItem><OrderItemId>21</OrderItemId></OrderItem></OrderItems></Order>
</Orders>`

	orders, err := UnmarshalCollection[Order]([]byte(body))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "1", orders[0].OrderID)
	assert.Equal(t, "2", orders[1].OrderID)
	require.Len(t, orders[1].OrderItems, 1)
	assert.Equal(t, "21", orders[1].OrderItems[0].OrderItemID)
}

func TestUnmarshalCollection_RootIsTheEntity(t *testing.T) {
	orders, err := UnmarshalCollection[Order]([]byte("<Order><OrderId>7</OrderId></Order>"))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "7", orders[0].OrderID)
}

func TestUnmarshalCollection_Empty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"whitespace", "  \n"},
		{"no matches", "<Orders/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := UnmarshalCollection[Order]([]byte(tt.body))
			require.NoError(t, err)
			assert.NotNil(t, orders)
			assert.Empty(t, orders)
		})
	}
}

func TestUnmarshalCollection_MalformedInput(t *testing.T) {
	_, err := UnmarshalCollection[Order]([]byte("not xml <<<"))
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestUnmarshal_NestedStatusAndRenamedFields(t *testing.T) {
	body := `<RetrieveOffersResponse>
  <RetailerOffers>
    <RetailerOffer>
      <EAN>0000007740404</EAN>
      <Condition>NEW</Condition>
      <Status><Published>true</Published></Status>
    </RetailerOffer>
  </RetailerOffers>
</RetrieveOffersResponse>`

	var resp OfferResponse
	require.NoError(t, Unmarshal([]byte(body), &resp))
	require.Len(t, resp.RetailerOffers, 1)
	require.NotNil(t, resp.RetailerOffers[0].Status)
	assert.Equal(t, "true", resp.RetailerOffers[0].Status.Published)

	var inv Inventory
	require.NoError(t, Unmarshal([]byte(`<InventoryResponse><TotalCount>1</TotalCount><Offers><Offer><EAN>1</EAN><NCK_Stock>4</NCK_Stock></Offer></Offers></InventoryResponse>`), &inv))
	require.Len(t, inv.Offers, 1)
	assert.Equal(t, "4", inv.Offers[0].NCKStock)
}
