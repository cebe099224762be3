package duitku

import (
	"context"
	"strconv"
)

// ----------------- Legacy (v2 merchant API) -----------------

type legacyClient struct {
	*gateway
}

func (c *legacyClient) ListPaymentMethods(ctx context.Context, amount int64) ([]PaymentMethod, error) {
	return c.listPaymentMethods(ctx, amount)
}

func (c *legacyClient) CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionResult, error) {
	return c.createTransaction(ctx, req, inquiry{
		path:          pathInquiry,
		requireVaName: true,
		sign: func(req TransactionRequest) string {
			return AmountSignature(c.merchantCode, req.PaymentAmount, c.datetime(), c.apiKey)
		},
		rules: channelRules,
		succeeded: func(res inquiryResponse) bool {
			return res.ResponseCode == ResponseSuccess
		},
	})
}

// CheckTransactionStatus has no not-found mapping here; the legacy API
// reports unknown orders as a plain gateway error.
func (c *legacyClient) CheckTransactionStatus(ctx context.Context, merchantOrderID string) (*StatusResult, error) {
	return c.checkTransactionStatus(ctx, merchantOrderID, statusCheck{
		rules: channelRules,
		succeeded: func(res statusResponse) bool {
			return res.ResponseCode == ResponseSuccess
		},
	})
}

func (c *legacyClient) ParseNotification(fields map[string]string) (*NotificationPayload, error) {
	return c.parseNotification(fields, false)
}

// ----------------- API -----------------

type apiClient struct {
	*gateway
}

func (c *apiClient) ListPaymentMethods(ctx context.Context, amount int64) ([]PaymentMethod, error) {
	return c.listPaymentMethods(ctx, amount)
}

func (c *apiClient) CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionResult, error) {
	return c.createTransaction(ctx, req, inquiry{
		path:          pathInquiry,
		requireVaName: true,
		sign: func(req TransactionRequest) string {
			return OrderSignature(c.merchantCode, req.MerchantOrderID, req.PaymentAmount, c.apiKey)
		},
		rules: channelRules,
		succeeded: func(res inquiryResponse) bool {
			return res.StatusCode == string(ResponseSuccess)
		},
	})
}

func (c *apiClient) CheckTransactionStatus(ctx context.Context, merchantOrderID string) (*StatusResult, error) {
	return c.checkTransactionStatus(ctx, merchantOrderID, statusCheck{
		rules: channelFoundRules,
		succeeded: func(res statusResponse) bool {
			return res.StatusCode == PaymentSuccess
		},
	})
}

func (c *apiClient) ParseNotification(fields map[string]string) (*NotificationPayload, error) {
	return c.parseNotification(fields, false)
}

// ----------------- POP -----------------

// popClient talks to the hosted checkout (POP) API, which only creates
// invoices and delivers callbacks.
type popClient struct {
	*gateway
}

func (c *popClient) ListPaymentMethods(ctx context.Context, amount int64) ([]PaymentMethod, error) {
	return nil, &GatewayError{Op: "list payment methods", Kind: ErrUnsupportedOperation}
}

func (c *popClient) CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionResult, error) {
	return c.createTransaction(ctx, req, inquiry{
		path:          pathCreateInvoice,
		requireVaName: false,
		sign: func(req TransactionRequest) string {
			return OrderSignature(c.merchantCode, req.MerchantOrderID, req.PaymentAmount, c.apiKey)
		},
		headers: c.signedHeaders,
		rules:   signatureRules,
		succeeded: func(res inquiryResponse) bool {
			return res.StatusCode == string(ResponseSuccess)
		},
	})
}

func (c *popClient) CheckTransactionStatus(ctx context.Context, merchantOrderID string) (*StatusResult, error) {
	return nil, &GatewayError{Op: "check transaction status", Kind: ErrUnsupportedOperation}
}

func (c *popClient) ParseNotification(fields map[string]string) (*NotificationPayload, error) {
	return c.parseNotification(fields, true)
}

func (c *popClient) signedHeaders() map[string]string {
	ts := c.now().UnixMilli()
	return map[string]string{
		"x-duitku-signature":    HeaderSignature(c.merchantCode, ts, c.apiKey),
		"x-duitku-timestamp":    strconv.FormatInt(ts, 10),
		"x-duitku-merchantcode": c.merchantCode,
	}
}
