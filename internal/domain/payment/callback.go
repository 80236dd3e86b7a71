package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CallbackEnvelope is the JSON body Daraja posts to the callback URL
type CallbackEnvelope struct {
	Body struct {
		StkCallback Callback `json:"stkCallback"`
	} `json:"Body"`
}

// Callback is the result of an STK push
type Callback struct {
	MerchantRequestID string           `json:"MerchantRequestID"`
	CheckoutRequestID string           `json:"CheckoutRequestID"`
	ResultCode        int              `json:"ResultCode"`
	ResultDesc        string           `json:"ResultDesc"`
	CallbackMetadata  CallbackMetadata `json:"CallbackMetadata"`
}

// CallbackMetadata lists name/value pairs of a successful payment
type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem is one metadata entry; Value may be a number or a string
type CallbackItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}

// Succeeded reports whether the customer completed the payment
func (c Callback) Succeeded() bool {
	return c.ResultCode == 0
}

// Item returns the metadata value with the given name
func (c Callback) Item(name string) (any, bool) {
	for _, item := range c.CallbackMetadata.Item {
		if item.Name == name {
			return item.Value, true
		}
	}
	return nil, false
}

// ReceiptNumber returns the MpesaReceiptNumber item, or the second item
// when the name is missing.
func (c Callback) ReceiptNumber() string {
	if v, ok := c.Item("MpesaReceiptNumber"); ok && v != nil {
		return stringify(v)
	}
	if len(c.CallbackMetadata.Item) > 1 && c.CallbackMetadata.Item[1].Value != nil {
		return stringify(c.CallbackMetadata.Item[1].Value)
	}
	return ""
}

// Amount returns the paid amount reported by the gateway
func (c Callback) Amount() (decimal.Decimal, bool) {
	v, ok := c.Item("Amount")
	if !ok || v == nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(stringify(v))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return fmt.Sprint(t)
	}
}
