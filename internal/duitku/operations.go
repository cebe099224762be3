package duitku

import (
	"context"
	"encoding/json"
	"strings"

	"duitku-go/internal/logger"

	"go.uber.org/zap"
)

// ----------------- Payment methods -----------------

func (g *gateway) listPaymentMethods(ctx context.Context, amount int64) ([]PaymentMethod, error) {
	const op = "list payment methods"
	log := logger.FromCtx(ctx).With(zap.Int64("amount", amount))

	datetime := g.datetime()
	payload := paymentMethodPayload{
		MerchantCode: g.merchantCode,
		Amount:       amount,
		Datetime:     datetime,
		Signature:    AmountSignature(g.merchantCode, amount, datetime, g.apiKey),
	}

	body, err := g.post(ctx, op, pathPaymentMethod, payload, nil, nil)
	if err != nil {
		return nil, err
	}

	var res paymentMethodResponse
	if err := json.Unmarshal(body, &res); err != nil {
		log.Error("failed decoding payment methods", zap.Error(err))
		return nil, &GatewayError{Op: op, Body: string(body), Kind: ErrGatewayResponse}
	}

	if res.ResponseCode != ResponseSuccess {
		log.Warn("duitku declined payment method listing",
			zap.String("response_code", string(res.ResponseCode)),
			zap.String("response_message", res.ResponseMessage),
		)
		return nil, &GatewayError{Op: op, Body: string(body), Kind: ErrGatewayResponse}
	}

	methods := make([]PaymentMethod, 0, len(res.PaymentFee))
	for _, fee := range res.PaymentFee {
		methods = append(methods, PaymentMethod{
			Code:     fee.PaymentMethod,
			Name:     fee.PaymentName,
			ImageURL: fee.PaymentImage,
			Fee:      int64(fee.TotalFee),
		})
	}

	log.Info("payment methods fetched", zap.Int("count", len(methods)))
	return methods, nil
}

// ----------------- Transactions -----------------

// inquiry describes how one variant creates a transaction.
type inquiry struct {
	path          string
	requireVaName bool
	sign          func(req TransactionRequest) string
	headers       func() map[string]string
	rules         []bodyRule
	// succeeded picks the field the variant reports success in.
	succeeded func(res inquiryResponse) bool
}

func (g *gateway) createTransaction(ctx context.Context, req TransactionRequest, flow inquiry) (*TransactionResult, error) {
	const op = "create transaction"
	log := logger.FromCtx(ctx).With(
		zap.String("merchant_order_id", req.MerchantOrderID),
		zap.Int64("amount", req.PaymentAmount),
		zap.String("payment_method", req.PaymentMethod),
	)

	if err := validateTransaction(req, flow.requireVaName); err != nil {
		log.Warn("transaction request rejected", zap.Error(err))
		return nil, err
	}

	var headers map[string]string
	if flow.headers != nil {
		headers = flow.headers()
	}

	body, err := g.post(ctx, op, flow.path, g.inquiryPayload(req, flow.sign(req)), headers, flow.rules)
	if err != nil {
		return nil, err
	}

	var res inquiryResponse
	if err := json.Unmarshal(body, &res); err != nil {
		log.Error("failed decoding transaction response", zap.Error(err))
		return nil, &GatewayError{Op: op, Body: string(body), Kind: ErrGatewayResponse}
	}

	code, message := res.status()
	if !flow.succeeded(res) {
		log.Warn("duitku declined transaction",
			zap.String("status_code", code),
			zap.String("status_message", message),
		)
		return &TransactionResult{
			Success:       false,
			StatusCode:    code,
			StatusMessage: message,
		}, nil
	}

	log.Info("duitku transaction created", zap.String("reference", res.Reference))

	return &TransactionResult{
		Success:       true,
		MerchantCode:  res.MerchantCode,
		Reference:     res.Reference,
		PaymentURL:    res.PaymentURL,
		VANumber:      res.VANumber,
		QRString:      res.QRString,
		Amount:        int64(res.Amount),
		StatusCode:    code,
		StatusMessage: message,
	}, nil
}

// ----------------- Status -----------------

type statusCheck struct {
	rules     []bodyRule
	succeeded func(res statusResponse) bool
}

func (g *gateway) checkTransactionStatus(ctx context.Context, merchantOrderID string, flow statusCheck) (*StatusResult, error) {
	const op = "check transaction status"
	log := logger.FromCtx(ctx).With(zap.String("merchant_order_id", merchantOrderID))

	payload := statusPayload{
		MerchantCode:    g.merchantCode,
		MerchantOrderID: merchantOrderID,
		Signature:       StatusSignature(g.merchantCode, merchantOrderID, g.apiKey),
	}

	body, err := g.post(ctx, op, pathTransactionStatus, payload, nil, flow.rules)
	if err != nil {
		return nil, err
	}

	var res statusResponse
	if err := json.Unmarshal(body, &res); err != nil {
		log.Error("failed decoding status response", zap.Error(err))
		return nil, &GatewayError{Op: op, Body: string(body), Kind: ErrGatewayResponse}
	}

	code, message := res.status()
	log.Info("duitku transaction status",
		zap.String("status_code", string(code)),
		zap.String("status", code.Name()),
	)

	if !flow.succeeded(res) {
		return &StatusResult{
			Success:       false,
			StatusCode:    code,
			StatusMessage: message,
		}, nil
	}

	return &StatusResult{
		Success:         true,
		MerchantOrderID: res.MerchantOrderID,
		Reference:       res.Reference,
		Amount:          int64(res.Amount),
		StatusCode:      code,
		StatusMessage:   message,
	}, nil
}

// ----------------- Notification -----------------

var requiredCallbackFields = []string{"merchantCode", "amount", "merchantOrderId", "signature"}

// checkCallbackFields reports ErrMissingParameter when any signed field is
// absent or blank.
func checkCallbackFields(fields map[string]string) error {
	var missing []string
	for _, k := range requiredCallbackFields {
		if strings.TrimSpace(fields[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &GatewayError{Op: "parse notification: " + strings.Join(missing, ", "), Kind: ErrMissingParameter}
	}
	return nil
}

// verifyCallback recomputes the callback signature with the held API key.
func (g *gateway) verifyCallback(fields map[string]string) error {
	expected := CallbackSignature(fields["merchantCode"], fields["amount"], fields["merchantOrderId"], g.apiKey)
	if !signatureEqual(fields["signature"], expected) {
		return &GatewayError{Op: "parse notification", Kind: ErrInvalidSignature}
	}
	return nil
}

func (g *gateway) parseNotification(fields map[string]string, requirePresence bool) (*NotificationPayload, error) {
	log := logger.L().With(
		zap.String("variant", string(g.variant)),
		zap.String("merchant_order_id", fields["merchantOrderId"]),
	)

	if requirePresence {
		if err := checkCallbackFields(fields); err != nil {
			log.Warn("callback rejected", zap.Error(err))
			return nil, err
		}
	}

	if err := g.verifyCallback(fields); err != nil {
		log.Warn("callback rejected", zap.Error(err))
		return nil, err
	}

	return &NotificationPayload{
		MerchantCode:     fields["merchantCode"],
		Amount:           fields["amount"],
		MerchantOrderID:  fields["merchantOrderId"],
		ProductDetail:    fields["productDetail"],
		AdditionalParam:  fields["additionalParam"],
		PaymentCode:      fields["paymentCode"],
		ResultCode:       CallbackCode(fields["resultCode"]),
		MerchantUserID:   fields["merchantUserId"],
		Reference:        fields["reference"],
		PublisherOrderID: fields["publisherOrderId"],
		SpUserHash:       fields["spUserHash"],
		SettlementDate:   fields["settlementDate"],
		IssuerCode:       fields["issuerCode"],
	}, nil
}
