package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/leemorgale/sms-chat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhonePoolService_RegisterNumber(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		wantErr error
	}{
		{name: "valid number", number: "+15551234567"},
		{name: "surrounding whitespace", number: "  +447700900123 "},
		{name: "missing plus", number: "15551234567", wantErr: ErrValidation},
		{name: "letters", number: "+1555abc", wantErr: ErrValidation},
		{name: "empty", number: "", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)

			phone, err := env.pool.RegisterNumber(context.Background(), tt.number, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, phone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.PhoneStatusAvailable, phone.Status)
			assert.NotEmpty(t, phone.ID)
		})
	}
}

func TestPhonePoolService_RegisterDuplicate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.pool.RegisterNumber(ctx, "+15551234567", nil)
	require.NoError(t, err)

	_, err = env.pool.RegisterNumber(ctx, "+15551234567", nil)
	assert.ErrorIs(t, err, ErrDuplicateNumber)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPhonePoolService_AssignToGroup(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	first := env.addPoolNumber(t, "+15550000101")
	env.addPoolNumber(t, "+15550000102")

	group := env.addGroup(t, "Hiking")
	require.True(t, group.HasBoundNumber())
	assert.Equal(t, first.PhoneNumber, *group.PhoneNumber)

	_, err := env.pool.AssignToGroup(ctx, group.ID)
	assert.ErrorIs(t, err, ErrGroupAlreadyHasNumber)

	available, err := env.pool.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "+15550000102", available[0].PhoneNumber)
}

func TestPhonePoolService_AssignFromEmptyPool(t *testing.T) {
	env := setupTestEnv(t)

	group := env.addGroup(t, "No Number")
	assert.False(t, group.HasBoundNumber())

	phone, err := env.pool.AssignToGroup(context.Background(), group.ID)
	assert.NoError(t, err)
	assert.Nil(t, phone)
}

func TestPhonePoolService_ConcurrentGroupCreation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	const poolSize = 3
	const groupCount = 8
	for i := 0; i < poolSize; i++ {
		env.addPoolNumber(t, fmt.Sprintf("+1555000020%d", i))
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		groups []*models.Group
	)
	for i := 0; i < groupCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			group, err := env.groupSvc.CreateGroup(ctx, fmt.Sprintf("group %d", i))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			groups = append(groups, group)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	require.Len(t, groups, groupCount)

	numbers := make(map[string]bool)
	withNumber := 0
	for _, g := range groups {
		if g.HasBoundNumber() {
			withNumber++
			assert.False(t, numbers[*g.PhoneNumber], "number %s bound twice", *g.PhoneNumber)
			numbers[*g.PhoneNumber] = true
		}
	}
	assert.Equal(t, poolSize, withNumber)
	assert.Len(t, numbers, poolSize)
}

func TestPhonePoolService_SetStatus(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	bound := env.addPoolNumber(t, "+15550000301")
	free := env.addPoolNumber(t, "+15550000302")
	group := env.addGroup(t, "Status")
	require.Equal(t, bound.PhoneNumber, *group.PhoneNumber)

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := env.pool.SetStatus(ctx, free.ID, "RETIRED")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("assigned requires an existing binding", func(t *testing.T) {
		_, err := env.pool.SetStatus(ctx, free.ID, "assigned")
		assert.ErrorIs(t, err, ErrInvalidState)

		phone, err := env.pool.SetStatus(ctx, bound.ID, "ASSIGNED")
		require.NoError(t, err)
		assert.True(t, phone.IsBound())
	})

	t.Run("inactive clears the binding", func(t *testing.T) {
		phone, err := env.pool.SetStatus(ctx, bound.ID, "inactive")
		require.NoError(t, err)
		assert.Equal(t, models.PhoneStatusInactive, phone.Status)
		assert.Nil(t, phone.GroupID)
		assert.Nil(t, phone.AssignedAt)

		refreshed, err := env.groupSvc.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.False(t, refreshed.HasBoundNumber())
	})

	t.Run("unknown number", func(t *testing.T) {
		_, err := env.pool.SetStatus(ctx, "missing", "AVAILABLE")
		assert.ErrorIs(t, err, ErrPhoneNotFound)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPhonePoolService_Release(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	phone := env.addPoolNumber(t, "+15550000401")
	group := env.addGroup(t, "Release")
	require.True(t, group.HasBoundNumber())

	released, err := env.pool.Release(ctx, phone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhoneStatusAvailable, released.Status)
	assert.False(t, released.IsBound())

	// The freed number can be claimed again
	again, err := env.groupSvc.AssignNumber(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, phone.PhoneNumber, *again.PhoneNumber)
}

func TestPhonePoolService_DeleteNumber(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	bound := env.addPoolNumber(t, "+15550000501")
	env.addGroup(t, "Keep")
	free := env.addPoolNumber(t, "+15550000502")

	assert.ErrorIs(t, env.pool.DeleteNumber(ctx, bound.ID), ErrInvalidState)
	assert.ErrorIs(t, env.pool.DeleteNumber(ctx, "missing"), ErrPhoneNotFound)

	require.NoError(t, env.pool.DeleteNumber(ctx, free.ID))
	_, err := env.pool.GetNumber(ctx, free.ID)
	assert.ErrorIs(t, err, ErrPhoneNotFound)

	all, err := env.pool.ListNumbers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPhonePoolService_LookupByNumber(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	phone := env.addPoolNumber(t, "+15550000601")

	got, err := env.pool.LookupByNumber(ctx, " +15550000601 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, phone.ID, got.ID)

	missing, err := env.pool.LookupByNumber(ctx, "+15550000699")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
