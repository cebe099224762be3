package duitku

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation               = errors.New("duitku: invalid transaction request")
	ErrInvalidSignature         = errors.New("duitku: invalid signature")
	ErrMissingParameter         = fmt.Errorf("%w: missing parameter", ErrInvalidSignature)
	ErrPaymentMethodUnavailable = errors.New("duitku: payment channel not available")
	ErrTransactionNotFound      = errors.New("duitku: transaction not found")
	ErrGatewayResponse          = errors.New("duitku: unexpected gateway response")
	ErrTransport                = errors.New("duitku: transport failure")
	ErrUnsupportedOperation     = errors.New("duitku: operation not supported by this variant")
)

// GatewayError describes a response the gateway sent back that could not be
// turned into a result. It unwraps to one of the sentinel kinds above.
type GatewayError struct {
	Op         string
	StatusCode int
	Body       string
	Kind       error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %v (http %d)", e.Op, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *GatewayError) Unwrap() error {
	return e.Kind
}

// TransportError wraps connection, DNS and timeout failures. It matches
// ErrTransport through errors.Is and unwraps to the network cause.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// bodyRule maps a substring of a failed response body to an error kind.
type bodyRule struct {
	needle string
	kind   error
}

var (
	invalidSignatureRule = bodyRule{"invalid signature", ErrInvalidSignature}
	wrongSignatureRule   = bodyRule{"wrong signature", ErrInvalidSignature}
	channelRule          = bodyRule{"payment channel not available", ErrPaymentMethodUnavailable}
	notFoundRule         = bodyRule{"transaction not found", ErrTransactionNotFound}

	signatureRules    = []bodyRule{invalidSignatureRule, wrongSignatureRule}
	channelRules      = []bodyRule{invalidSignatureRule, wrongSignatureRule, channelRule}
	channelFoundRules = []bodyRule{invalidSignatureRule, wrongSignatureRule, channelRule, notFoundRule}
)

// classifyBody runs the rules in order and falls back to ErrGatewayResponse.
// Matching is case-insensitive since the gateway is not consistent about it.
func classifyBody(body string, rules []bodyRule) error {
	lower := strings.ToLower(body)
	for _, r := range rules {
		if strings.Contains(lower, r.needle) {
			return r.kind
		}
	}
	return ErrGatewayResponse
}
