package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/mail"
	"regexp"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	lookupsv2 "github.com/twilio/twilio-go/rest/lookups/v2"
)

const sendgridHost = "https://api.sendgrid.com"

// -----------------------------------------------------------------------
// Phone numbers
// -----------------------------------------------------------------------

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`) // ITU-T E.164

func IsE164(number string) bool { return e164Regex.MatchString(number) }

// NewTwilioClient returns nil when either credential is missing so callers can
// fall back to the local E.164 check.
func NewTwilioClient(accountSID, authToken string) *twilio.RestClient {
	if accountSID == "" || authToken == "" {
		return nil
	}
	return twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
}

// ValidatePhoneNumber reports whether number is well-formed E.164 and, when
// lookups are enabled and a Twilio client is present, known to Twilio for the
// given ISO country (country may be empty).
func ValidatePhoneNumber(
	ctx context.Context,
	number string,
	country string,
	lookupWithTwilio bool,
	tw *twilio.RestClient,
) (bool, error) {
	if !IsE164(number) {
		return false, nil
	}
	if !lookupWithTwilio || tw == nil {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var params *lookupsv2.FetchPhoneNumberParams
	if country != "" {
		params = &lookupsv2.FetchPhoneNumberParams{CountryCode: Ptr(country)}
	}

	resp, err := tw.LookupsV2.FetchPhoneNumber(number, params)
	if err == nil {
		return resp != nil && Val(resp.Valid), nil
	}
	if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
		if restErr.Status == 404 {
			return false, nil
		}
		return false, fmt.Errorf("%w: twilio lookup %d %s", ErrExternalServiceFailure, restErr.Status, restErr.Error())
	}
	return false, fmt.Errorf("%w: %v", ErrExternalServiceFailure, err)
}

// -----------------------------------------------------------------------
// E-mail addresses
// -----------------------------------------------------------------------

func isValidEmailSyntax(e string) bool {
	addr, err := mail.ParseAddress(e)
	return err == nil && addr.Address == e
}

func hasMX(ctx context.Context, domain string) bool {
	mx, err := net.DefaultResolver.LookupMX(ctx, domain)
	return err == nil && len(mx) > 0
}

// ValidateEmail checks syntax and the domain's MX record. With
// validateWithSendGrid it additionally asks SendGrid for a verdict and
// accepts "valid" and "risky".
func ValidateEmail(ctx context.Context, apiKey string, email string, validateWithSendGrid bool) (bool, error) {
	if !isValidEmailSyntax(email) {
		return false, nil
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false, nil
	}
	if !hasMX(ctx, email[at+1:]) {
		return false, nil
	}

	if !validateWithSendGrid || apiKey == "" {
		return true, nil
	}

	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return false, err
	}
	req := sendgrid.GetRequest(apiKey, "/v3/validations/email", sendgridHost)
	req.Method = "POST"
	req.Body = body

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrExternalServiceFailure, err)
	}

	switch resp.StatusCode {
	case 200:
		var sg struct {
			Result struct {
				Verdict string `json:"verdict"`
			} `json:"result"`
		}
		if err := json.Unmarshal([]byte(resp.Body), &sg); err != nil {
			return false, fmt.Errorf("sendgrid JSON decode: %w", err)
		}
		verdict := strings.ToLower(sg.Result.Verdict)
		return verdict == "valid" || verdict == "risky", nil
	case 400:
		return false, nil
	default:
		return false, fmt.Errorf("%w: sendgrid validation status %d", ErrExternalServiceFailure, resp.StatusCode)
	}
}
