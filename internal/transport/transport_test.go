package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leemorgale/sms-chat/internal/config"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	sender, err := New(config.TransportConfig{Mock: true})
	require.NoError(t, err)
	assert.Equal(t, "mock", sender.Name())

	sender, err = New(config.TransportConfig{AccountSID: "AC123", AuthToken: "token", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "twilio", sender.Name())

	_, err = New(config.TransportConfig{})
	assert.Error(t, err)
}

func TestMockSender(t *testing.T) {
	m := NewMockSender()
	ctx := context.Background()

	sid, err := m.Send(ctx, "+15550000001", "+15559999999", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, sid)

	m.FailFor("+15550000002")
	_, err = m.Send(ctx, "+15550000002", "+15559999999", "hello")
	require.Error(t, err)
	var sendErr *Error
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, "+15550000002", sendErr.To)
	assert.Equal(t, "mock", sendErr.Provider)

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, SentMessage{SID: sid, To: "+15550000001", From: "+15559999999", Body: "hello"}, sent[0])

	m.Reset()
	assert.Empty(t, m.Sent())
	_, err = m.Send(ctx, "+15550000002", "+15559999999", "again")
	assert.NoError(t, err)
}

func TestMockSender_CanceledContext(t *testing.T) {
	m := NewMockSender()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Send(ctx, "+15550000001", "+15559999999", "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Sent())
}

func TestMockSender_Concurrent(t *testing.T) {
	m := NewMockSender()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Send(context.Background(), "+15550000001", "+15559999999", "hi")
		}()
	}
	wg.Wait()
	assert.Len(t, m.Sent(), 20)
}

type fakeTwilioAPI struct {
	params *twilioApi.CreateMessageParams
	resp   *twilioApi.ApiV2010Message
	err    error
}

func (f *fakeTwilioAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	return f.resp, f.err
}

func TestTwilioSender_Send(t *testing.T) {
	sid := "SM42"
	api := &fakeTwilioAPI{resp: &twilioApi.ApiV2010Message{Sid: &sid}}
	s := &TwilioSender{api: api}

	got, err := s.Send(context.Background(), "+15550000001", "+15559999999", "[g] a: hi")
	require.NoError(t, err)
	assert.Equal(t, "SM42", got)
	require.NotNil(t, api.params)
	assert.Equal(t, "+15550000001", *api.params.To)
	assert.Equal(t, "+15559999999", *api.params.From)
	assert.Equal(t, "[g] a: hi", *api.params.Body)
}

func TestTwilioSender_Error(t *testing.T) {
	api := &fakeTwilioAPI{err: &twilioclient.TwilioRestError{Code: 21211, Message: "invalid To", Status: 400}}
	s := &TwilioSender{api: api}

	_, err := s.Send(context.Background(), "+1bad", "+15559999999", "hi")
	require.Error(t, err)

	var sendErr *Error
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, 21211, sendErr.Code)
	assert.Equal(t, "twilio", sendErr.Provider)
	assert.Contains(t, sendErr.Error(), "code 21211")
}
