// Package provider implements the Lydia payment request client.
//
// The API is a single form-encoded POST whose JSON response signals success
// through a string error code: "0" means the request was accepted, anything
// else is a failure. The outcome is decided once here, as a typed error, so
// callers never inspect raw provider fields.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrorKind classifies a failed payment request.
type ErrorKind int

// Provider failure categories, each with a distinct user-facing message.
const (
	// KindTransport means the provider could not be reached.
	KindTransport ErrorKind = iota
	// KindHTTPStatus means the provider answered with a non-2xx status.
	KindHTTPStatus
	// KindBadFormat means the body was not a JSON object.
	KindBadFormat
	// KindDeclined means the provider processed the request and refused it.
	KindDeclined
	// KindMissingLink means the provider accepted but returned no payment URL.
	KindMissingLink
)

// Error describes a failed payment request.
type Error struct {
	Kind       ErrorKind
	StatusCode int    // HTTP status, set for KindHTTPStatus.
	Code       string // Provider error code, set for KindDeclined.
	Message    string // User-facing message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Client calls the Lydia payment request endpoint.
type Client struct {
	endpoint   string
	message    string
	httpClient *http.Client
}

// NewClient constructs a Client for the given endpoint. The message is
// attached to every payment request shown to the customer.
func NewClient(endpoint, message string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		message:    message,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreatePaymentRequest submits a payment request and returns the payment link
// along with the raw response body. Failures are always a *Error.
func (c *Client) CreatePaymentRequest(ctx context.Context, vendorToken string, amount float64, recipient string) (string, []byte, error) {
	form := url.Values{
		"vendor_token": {vendorToken},
		"amount":       {strconv.FormatFloat(amount, 'f', -1, 64)},
		"currency":     {"EUR"},
		"type":         {"email"},
		"recipient":    {recipient},
		"message":      {c.message},
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if errReq != nil {
		return "", nil, &Error{Kind: KindTransport, Message: "Impossible de joindre l'API Lydia. Vérifiez votre connexion."}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return "", nil, &Error{Kind: KindTransport, Message: "Impossible de joindre l'API Lydia. Vérifiez votre connexion."}
	}
	defer func() { _ = res.Body.Close() }()

	raw, errRead := io.ReadAll(res.Body)
	if errRead != nil {
		return "", nil, &Error{Kind: KindTransport, Message: "Impossible de joindre l'API Lydia. Vérifiez votre connexion."}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", raw, &Error{
			Kind:       KindHTTPStatus,
			StatusCode: res.StatusCode,
			Message:    fmt.Sprintf("Lydia a refusé la requête (%d).", res.StatusCode),
		}
	}

	var body map[string]any
	if errDecode := json.Unmarshal(raw, &body); errDecode != nil || body == nil {
		return "", raw, &Error{Kind: KindBadFormat, Message: "Lydia a renvoyé un format invalide."}
	}

	// The success code is literally the string "0"; the field may also arrive
	// as a JSON number. Compare its string form, never its truthiness.
	code := stringifyCode(body["error"])
	if code != "0" {
		message := code
		if providerMsg, ok := body["message"].(string); ok && strings.TrimSpace(providerMsg) != "" {
			message = strings.TrimSpace(providerMsg)
		}
		if message == "" {
			message = "Erreur inconnue"
		}
		return "", raw, &Error{Kind: KindDeclined, Code: code, Message: "Lydia: " + message}
	}

	link := extractLink(body)
	if link == "" {
		return "", raw, &Error{Kind: KindMissingLink, Message: "Pas de lien dans la réponse Lydia (mobile_url absent)."}
	}
	return link, raw, nil
}

// stringifyCode renders the provider error code as a string, whatever its
// JSON type.
func stringifyCode(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// extractLink pulls the payment URL out of a success response. First match
// wins: mobile_url, url, request.mobile_url, request.url.
func extractLink(body map[string]any) string {
	if link := stringField(body, "mobile_url"); link != "" {
		return link
	}
	if link := stringField(body, "url"); link != "" {
		return link
	}
	nested, ok := body["request"].(map[string]any)
	if !ok {
		return ""
	}
	if link := stringField(nested, "mobile_url"); link != "" {
		return link
	}
	return stringField(nested, "url")
}

// stringField returns a trimmed string field or "".
func stringField(m map[string]any, key string) string {
	value, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
