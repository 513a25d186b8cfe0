package payment

import (
	"errors"
	"fmt"
)

var ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")

// InvalidPaymentMethodError names the missing required field so the
// storefront can point the customer at the right input.
type InvalidPaymentMethodError struct {
	Method string
	Field  string
}

func (e *InvalidPaymentMethodError) Error() string {
	return fmt.Sprintf("invalid %s payment method: missing %s", e.Method, e.Field)
}

// MethodRequest is the client-submitted payment block. Which fields are
// required depends on Type.
type MethodRequest struct {
	Type            string `json:"type"`
	Token           string `json:"token,omitempty"`
	Installments    int32  `json:"installments,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	LegalIDType     string `json:"legal_id_type,omitempty"`
	LegalID         string `json:"legal_id,omitempty"`
	InstitutionCode string `json:"institution_code,omitempty"`
}

// Method is the parsed, validated payment method. Each variant carries its
// own gateway payload shape.
type Method interface {
	Type() string
	Payload() map[string]interface{}
}

type CardMethod struct {
	Token        string
	Installments int32
}

func (CardMethod) Type() string { return "CARD" }

func (m CardMethod) Payload() map[string]interface{} {
	return map[string]interface{}{
		"type":         "CARD",
		"token":        m.Token,
		"installments": m.Installments,
	}
}

type WalletMethod struct {
	PhoneNumber string
}

func (WalletMethod) Type() string { return "WALLET" }

func (m WalletMethod) Payload() map[string]interface{} {
	return map[string]interface{}{
		"type":         "WALLET",
		"phone_number": m.PhoneNumber,
	}
}

type BankRedirectMethod struct {
	LegalIDType     string
	LegalID         string
	InstitutionCode string
}

func (BankRedirectMethod) Type() string { return "BANK_REDIRECT" }

func (m BankRedirectMethod) Payload() map[string]interface{} {
	return map[string]interface{}{
		"type":                       "BANK_REDIRECT",
		"user_legal_id_type":         m.LegalIDType,
		"user_legal_id":              m.LegalID,
		"financial_institution_code": m.InstitutionCode,
	}
}

// AsyncMethod covers the purely asynchronous variants that need no extra
// fields; the gateway resolves them out-of-band.
type AsyncMethod struct {
	Kind string
}

func (m AsyncMethod) Type() string { return m.Kind }

func (m AsyncMethod) Payload() map[string]interface{} {
	return map[string]interface{}{
		"type": m.Kind,
	}
}

var asyncKinds = map[string]bool{
	"BANK_TRANSFER": true,
	"BANK_COLLECT":  true,
}

// ParseMethod validates the request against the variant's required-field
// set and returns the matching Method. A request with an unknown type but a
// card token is treated as a single-installment card payment; older
// storefront clients sent card tokens without a type tag.
func ParseMethod(req MethodRequest) (Method, error) {
	switch {
	case req.Type == "CARD":
		if req.Token == "" {
			return nil, &InvalidPaymentMethodError{Method: "CARD", Field: "token"}
		}
		installments := req.Installments
		if installments <= 0 {
			installments = 1
		}
		return CardMethod{Token: req.Token, Installments: installments}, nil

	case req.Type == "WALLET":
		if req.PhoneNumber == "" {
			return nil, &InvalidPaymentMethodError{Method: "WALLET", Field: "phone_number"}
		}
		return WalletMethod{PhoneNumber: req.PhoneNumber}, nil

	case req.Type == "BANK_REDIRECT":
		if req.LegalIDType == "" {
			return nil, &InvalidPaymentMethodError{Method: "BANK_REDIRECT", Field: "legal_id_type"}
		}
		if req.LegalID == "" {
			return nil, &InvalidPaymentMethodError{Method: "BANK_REDIRECT", Field: "legal_id"}
		}
		if req.InstitutionCode == "" {
			return nil, &InvalidPaymentMethodError{Method: "BANK_REDIRECT", Field: "institution_code"}
		}
		return BankRedirectMethod{
			LegalIDType:     req.LegalIDType,
			LegalID:         req.LegalID,
			InstitutionCode: req.InstitutionCode,
		}, nil

	case asyncKinds[req.Type]:
		return AsyncMethod{Kind: req.Type}, nil

	case req.Token != "":
		// legacy clients: token without a recognized type means card
		return CardMethod{Token: req.Token, Installments: 1}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, req.Type)
	}
}
