package duitku

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type PaymentMethod struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ImageURL string `json:"image"`
	Fee      int64  `json:"fee"`
}

type TransactionRequest struct {
	MerchantOrderID  string          `json:"merchantOrderId" validate:"required,max=50"`
	CustomerVaName   string          `json:"customerVaName,omitempty" validate:"max=20"`
	Email            string          `json:"email" validate:"required,email,max=255"`
	PaymentAmount    int64           `json:"paymentAmount" validate:"required,gt=0"`
	PaymentMethod    string          `json:"paymentMethod" validate:"required,max=2"`
	ProductDetails   string          `json:"productDetails" validate:"required,max=255"`
	ExpiryPeriod     *int            `json:"expiryPeriod,omitempty" validate:"omitempty,gte=0"`
	PhoneNumber      string          `json:"phoneNumber,omitempty" validate:"max=50"`
	ItemDetails      []ItemDetail    `json:"itemDetails,omitempty" validate:"omitempty,dive"`
	CustomerDetail   *CustomerDetail `json:"customerDetail,omitempty"`
	AdditionalParam  string          `json:"additionalParam,omitempty"`
	MerchantUserInfo string          `json:"merchantUserInfo,omitempty"`
}

type ItemDetail struct {
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price" validate:"gte=0"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type CustomerDetail struct {
	FirstName       string   `json:"firstName,omitempty"`
	LastName        string   `json:"lastName,omitempty"`
	Email           string   `json:"email,omitempty"`
	PhoneNumber     string   `json:"phoneNumber,omitempty"`
	BillingAddress  *Address `json:"billingAddress,omitempty"`
	ShippingAddress *Address `json:"shippingAddress,omitempty"`
}

type Address struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// TransactionResult is returned for every well-formed inquiry response.
// Success is false when the gateway declined the request; StatusCode and
// StatusMessage then carry its reason.
type TransactionResult struct {
	Success       bool   `json:"success"`
	MerchantCode  string `json:"merchantCode,omitempty"`
	Reference     string `json:"reference,omitempty"`
	PaymentURL    string `json:"paymentUrl,omitempty"`
	VANumber      string `json:"vaNumber,omitempty"`
	QRString      string `json:"qrString,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

type StatusResult struct {
	Success         bool        `json:"success"`
	MerchantOrderID string      `json:"merchantOrderId,omitempty"`
	Reference       string      `json:"reference,omitempty"`
	Amount          int64       `json:"amount,omitempty"`
	StatusCode      PaymentCode `json:"statusCode"`
	StatusMessage   string      `json:"statusMessage"`
}

// NotificationPayload is the verified body of a gateway callback.
type NotificationPayload struct {
	MerchantCode     string       `json:"merchantCode"`
	Amount           string       `json:"amount"`
	MerchantOrderID  string       `json:"merchantOrderId"`
	ProductDetail    string       `json:"productDetail"`
	AdditionalParam  string       `json:"additionalParam"`
	PaymentCode      string       `json:"paymentCode"`
	ResultCode       CallbackCode `json:"resultCode"`
	MerchantUserID   string       `json:"merchantUserId"`
	Reference        string       `json:"reference"`
	PublisherOrderID string       `json:"publisherOrderId"`
	SpUserHash       string       `json:"spUserHash"`
	SettlementDate   string       `json:"settlementDate"`
	IssuerCode       string       `json:"issuerCode"`
}

func (n *NotificationPayload) Succeeded() bool {
	return n.ResultCode == CallbackSuccess
}

// ----------------- Codes -----------------

type ResponseCode string

const ResponseSuccess ResponseCode = "00"

func (c ResponseCode) Name() string {
	if c == ResponseSuccess {
		return "Success"
	}
	return "Unknown"
}

// PaymentCode is the transaction status reported by the status endpoint.
type PaymentCode string

const (
	PaymentSuccess PaymentCode = "00"
	PaymentPending PaymentCode = "01"
	PaymentFailed  PaymentCode = "02"
)

func (c PaymentCode) Name() string {
	switch c {
	case PaymentSuccess:
		return "Success"
	case PaymentPending:
		return "Pending"
	case PaymentFailed:
		return "Failed"
	}
	return "Unknown"
}

type CallbackCode string

const (
	CallbackSuccess CallbackCode = "00"
	CallbackFailed  CallbackCode = "01"
)

func (c CallbackCode) Name() string {
	switch c {
	case CallbackSuccess:
		return "Success"
	case CallbackFailed:
		return "Failed"
	}
	return "Unknown"
}

// ----------------- Amount -----------------

// Amount decodes a monetary value the gateway may send either as a JSON
// number or as a string such as "10000.0". Fractions are truncated.
type Amount int64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = 0
			return nil
		}
	}

	n, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = Amount(n)
	return nil
}

// ParseAmount coerces a decimal string to its integer part.
func ParseAmount(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return int64(f), nil
}

// ----------------- Wire responses -----------------

type paymentMethodResponse struct {
	PaymentFee []struct {
		PaymentMethod string `json:"paymentMethod"`
		PaymentName   string `json:"paymentName"`
		PaymentImage  string `json:"paymentImage"`
		TotalFee      Amount `json:"totalFee"`
	} `json:"paymentFee"`
	ResponseCode    ResponseCode `json:"responseCode"`
	ResponseMessage string       `json:"responseMessage"`
}

type inquiryResponse struct {
	MerchantCode  string       `json:"merchantCode"`
	Reference     string       `json:"reference"`
	PaymentURL    string       `json:"paymentUrl"`
	VANumber      string       `json:"vaNumber"`
	QRString      string       `json:"qrString"`
	Amount        Amount       `json:"amount"`
	ResponseCode    ResponseCode `json:"responseCode"`
	ResponseMessage string       `json:"responseMessage"`
	StatusCode      string       `json:"statusCode"`
	StatusMessage   string       `json:"statusMessage"`
}

// status reports statusCode/statusMessage, or responseCode/responseMessage
// when the gateway only sent the latter.
func (r inquiryResponse) status() (string, string) {
	if r.StatusCode == "" {
		return string(r.ResponseCode), r.ResponseMessage
	}
	return r.StatusCode, r.StatusMessage
}

type statusResponse struct {
	MerchantOrderID string       `json:"merchantOrderId"`
	Reference       string       `json:"reference"`
	Amount          Amount       `json:"amount"`
	ResponseCode    ResponseCode `json:"responseCode"`
	ResponseMessage string       `json:"responseMessage"`
	StatusCode      PaymentCode  `json:"statusCode"`
	StatusMessage   string       `json:"statusMessage"`
}

func (r statusResponse) status() (PaymentCode, string) {
	if r.StatusCode == "" {
		return PaymentCode(r.ResponseCode), r.ResponseMessage
	}
	return r.StatusCode, r.StatusMessage
}
