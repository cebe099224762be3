package duitku

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"duitku-go/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client is the set of operations every Duitku API family is asked for.
// Variants that have no endpoint for an operation return
// ErrUnsupportedOperation.
type Client interface {
	ListPaymentMethods(ctx context.Context, amount int64) ([]PaymentMethod, error)
	CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionResult, error)
	CheckTransactionStatus(ctx context.Context, merchantOrderID string) (*StatusResult, error)
	ParseNotification(fields map[string]string) (*NotificationPayload, error)
}

type Environment string

const (
	Sandbox    Environment = "sandbox"
	Production Environment = "production"
)

func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sandbox", "development", "dev":
		return Sandbox, nil
	case "production", "prod":
		return Production, nil
	}
	return "", fmt.Errorf("duitku: unknown environment %q", s)
}

// Variant selects the upstream API family.
type Variant string

const (
	// VariantLegacy is the v2 merchant API reached through configured URLs.
	VariantLegacy Variant = "legacy"
	VariantAPI    Variant = "api"
	VariantPOP    Variant = "pop"
)

func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VariantLegacy, nil
	case VariantLegacy, VariantAPI, VariantPOP:
		return v, nil
	}
	return "", fmt.Errorf("duitku: unknown variant %q", s)
}

// BaseURLs is a sandbox/production pair.
type BaseURLs struct {
	Sandbox    string
	Production string
}

func (b BaseURLs) For(env Environment) string {
	if env == Production {
		return b.Production
	}
	return b.Sandbox
}

var (
	apiBaseURLs = BaseURLs{
		Sandbox:    "https://sandbox.duitku.com",
		Production: "https://passport.duitku.com",
	}
	popBaseURLs = BaseURLs{
		Sandbox:    "https://api-sandbox.duitku.com",
		Production: "https://api-prod.duitku.com",
	}
)

const (
	pathPaymentMethod     = "/webapi/api/merchant/paymentmethod/getpaymentmethod"
	pathInquiry           = "/webapi/api/merchant/v2/inquiry"
	pathTransactionStatus = "/webapi/api/merchant/transactionStatus"
	pathCreateInvoice     = "/api/merchant/createInvoice"
)

type Config struct {
	MerchantCode string
	APIKey       string
	CallbackURL  string
	ReturnURL    string
	Environment  Environment
	Variant      Variant

	// BaseURLs is only read by the legacy variant; the others use fixed hosts.
	BaseURLs BaseURLs

	// HTTPClient defaults to a client with a 15 second timeout.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// gateway holds what every variant shares: credentials, the HTTP transport
// and the clock. It is never mutated after New returns.
type gateway struct {
	variant      Variant
	merchantCode string
	apiKey       string
	callbackURL  string
	returnURL    string
	baseURL      string

	http *resty.Client
	loc  *time.Location
	now  func() time.Time
}

func New(cfg Config) (Client, error) {
	if cfg.MerchantCode == "" {
		return nil, errors.New("duitku: merchant code is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("duitku: api key is required")
	}

	env := cfg.Environment
	if env == "" {
		env = Sandbox
	}
	if env != Sandbox && env != Production {
		return nil, fmt.Errorf("duitku: unknown environment %q", env)
	}

	variant := cfg.Variant
	if variant == "" {
		variant = VariantLegacy
	}

	var baseURL string
	switch variant {
	case VariantLegacy:
		baseURL = cfg.BaseURLs.For(env)
		if baseURL == "" {
			return nil, fmt.Errorf("duitku: base url for %s environment is required", env)
		}
	case VariantAPI:
		baseURL = apiBaseURLs.For(env)
	case VariantPOP:
		baseURL = popBaseURLs.For(env)
	default:
		return nil, fmt.Errorf("duitku: unknown variant %q", variant)
	}

	g := newGateway(cfg, variant, baseURL)

	logger.L().Debug("duitku client configured",
		zap.String("variant", string(variant)),
		zap.String("environment", string(env)),
		zap.String("base_url", baseURL),
	)

	switch variant {
	case VariantAPI:
		return &apiClient{g}, nil
	case VariantPOP:
		return &popClient{g}, nil
	default:
		return &legacyClient{g}, nil
	}
}

func newGateway(cfg Config, variant Variant, baseURL string) *gateway {
	hc := &http.Client{Timeout: 15 * time.Second}
	if cfg.HTTPClient != nil {
		// resty writes Timeout on the client it wraps; keep the caller's untouched.
		c := *cfg.HTTPClient
		hc = &c
	}

	rc := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetLogger(restyLogger{})
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		logger.L().Error("failed to load Jakarta location, defaulting to UTC", zap.Error(err))
		loc = time.UTC
	}

	return &gateway{
		variant:      variant,
		merchantCode: cfg.MerchantCode,
		apiKey:       cfg.APIKey,
		callbackURL:  cfg.CallbackURL,
		returnURL:    cfg.ReturnURL,
		baseURL:      baseURL,
		http:         rc,
		loc:          loc,
		now:          time.Now,
	}
}

// restyLogger forwards resty's own messages to the current global logger, so
// a later logger.Init or logger.Replace still reaches them.
type restyLogger struct{}

var _ resty.Logger = restyLogger{}

func (restyLogger) Errorf(format string, v ...any) {
	logger.L().Sugar().Errorf(format, v...)
}

func (restyLogger) Warnf(format string, v ...any) {
	logger.L().Sugar().Warnf(format, v...)
}

func (restyLogger) Debugf(format string, v ...any) {
	logger.L().Sugar().Debugf(format, v...)
}

func (g *gateway) datetime() string {
	return formatDatetime(g.now().In(g.loc))
}

// post sends payload as JSON and returns the raw body of a 2xx response.
// Any other status is classified by rules against the response body.
func (g *gateway) post(ctx context.Context, op, path string, payload any, headers map[string]string, rules []bodyRule) ([]byte, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("variant", string(g.variant)),
		zap.String("op", op),
	)

	req := g.http.R().
		SetContext(ctx).
		SetBody(payload)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	log.Debug("sending request to duitku", zap.String("path", path))

	resp, err := req.Post(path)
	if err != nil {
		log.Error("duitku request failed", zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		kind := classifyBody(string(body), rules)
		log.Error("duitku returned non-success status",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("response", body),
			zap.NamedError("kind", kind),
		)
		return nil, &GatewayError{Op: op, StatusCode: resp.StatusCode(), Body: string(body), Kind: kind}
	}

	return body, nil
}

func (g *gateway) inquiryPayload(req TransactionRequest, signature string) inquiryPayload {
	return inquiryPayload{
		TransactionRequest: req,
		MerchantCode:       g.merchantCode,
		ReturnURL:          g.returnURL,
		CallbackURL:        g.callbackURL,
		Signature:          signature,
	}
}

type inquiryPayload struct {
	TransactionRequest
	MerchantCode string `json:"merchantcode"`
	ReturnURL    string `json:"returnUrl"`
	CallbackURL  string `json:"callbackUrl"`
	Signature    string `json:"signature"`
}

type paymentMethodPayload struct {
	MerchantCode string `json:"merchantcode"`
	Amount       int64  `json:"amount"`
	Datetime     string `json:"datetime"`
	Signature    string `json:"signature"`
}

type statusPayload struct {
	MerchantCode    string `json:"merchantcode"`
	MerchantOrderID string `json:"merchantOrderId"`
	Signature       string `json:"signature"`
}
