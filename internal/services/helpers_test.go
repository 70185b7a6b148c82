package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/leemorgale/sms-chat/internal/config"
	"github.com/leemorgale/sms-chat/internal/db"
	"github.com/leemorgale/sms-chat/internal/events"
	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/internal/transport"

	"github.com/stretchr/testify/require"
)

const defaultFrom = "+15550000000"

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.MessageCreated
}

func (p *recordingPublisher) PublishMessageCreated(_ context.Context, evt events.MessageCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.MessageCreated {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.MessageCreated(nil), p.events...)
}

type testEnv struct {
	users    db.UserRepository
	groups   db.GroupRepository
	phones   db.PhoneRepository
	messages db.MessageRepository
	otps     db.OTPRepository

	sender    *transport.MockSender
	publisher *recordingPublisher

	pool     *PhonePoolService
	fanout   *FanoutService
	userSvc  *UserService
	groupSvc *GroupService
	router   *InboundRouter
	otpSvc   *OTPService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := db.SetupTestDB(t)
	env := &testEnv{
		users:     db.NewUserRepository(database),
		groups:    db.NewGroupRepository(database),
		phones:    db.NewPhoneRepository(database),
		messages:  db.NewMessageRepository(database),
		otps:      db.NewOTPRepository(database),
		sender:    transport.NewMockSender(),
		publisher: &recordingPublisher{},
	}

	cfg := config.TransportConfig{Mock: true, DefaultFrom: defaultFrom}
	env.pool = NewPhonePoolService(env.phones)
	env.fanout = NewFanoutService(env.groups, env.sender, cfg, 4)
	env.userSvc = NewUserService(env.users, env.groups)
	env.groupSvc = NewGroupService(env.groups, env.users, env.messages, env.pool, env.fanout, env.publisher, 50)
	env.router = NewInboundRouter(env.users, env.groups, env.phones, env.messages, env.fanout, env.publisher)
	env.otpSvc = NewOTPService(env.otps, env.users, env.fanout, true, "")

	return env
}

var poolClock = time.Now().UTC().Add(-time.Hour)

// addPoolNumber registers a number with a strictly increasing creation time
func (e *testEnv) addPoolNumber(t *testing.T, number string) *models.PhoneNumber {
	t.Helper()
	phone := models.NewPhoneNumber(number, nil)
	poolClock = poolClock.Add(time.Second)
	phone.CreatedAt = poolClock
	require.NoError(t, e.phones.Create(context.Background(), phone))
	return phone
}

func (e *testEnv) addUser(t *testing.T, name, phone string) *models.User {
	t.Helper()
	user, err := e.userSvc.CreateUser(context.Background(), name, phone)
	require.NoError(t, err)
	return user
}

func (e *testEnv) addGroup(t *testing.T, name string) *models.Group {
	t.Helper()
	group, err := e.groupSvc.CreateGroup(context.Background(), name)
	require.NoError(t, err)
	return group
}

// join adds membership without the welcome SMS side effects
func (e *testEnv) join(t *testing.T, group *models.Group, users ...*models.User) {
	t.Helper()
	for _, u := range users {
		added, err := e.groups.AddMember(context.Background(), group.ID, u.ID)
		require.NoError(t, err)
		require.True(t, added)
	}
}
