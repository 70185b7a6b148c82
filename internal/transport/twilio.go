package transport

import (
	"context"
	"errors"
	"time"

	"github.com/leemorgale/sms-chat/pkg/logger"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// messageCreator is the slice of the Twilio API used for sends
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends through the Twilio Messages API
type TwilioSender struct {
	api messageCreator
}

// NewTwilioSender creates a sender authenticated with the account credentials
func NewTwilioSender(accountSID, authToken string, timeout time.Duration) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &TwilioSender{api: client.Api}
}

func (s *TwilioSender) Name() string {
	return "twilio"
}

func (s *TwilioSender) Send(ctx context.Context, to, from, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Provider: s.Name(), To: to, Err: err}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		sendErr := &Error{Provider: s.Name(), To: to, Err: err}
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			sendErr.Code = restErr.Code
		}
		return "", sendErr
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}

	logger.Debug("Twilio SMS sent", zap.String("sid", sid), zap.String("to", to))
	return sid, nil
}
