package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T) redis.UniversalClient {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestLockUnlock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	locker := ForAdministrativeUnit(client, "unit_1", "holder-a")
	assert.NoError(t, locker.Lock(ctx, time.Minute))

	// second holder on the same unit must be rejected
	other := ForAdministrativeUnit(client, "unit_1", "holder-b")
	assert.Error(t, other.Lock(ctx, time.Minute))

	// a different unit locks independently
	elsewhere := ForAdministrativeUnit(client, "unit_2", "holder-b")
	assert.NoError(t, elsewhere.Lock(ctx, time.Minute))

	assert.NoError(t, locker.Unlock(ctx))
	assert.NoError(t, other.Lock(ctx, time.Minute))
}

func TestUnlockWrongHolder(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "klub:vs-alloc:unit_9", "holder-a")
	assert.NoError(t, locker.Lock(ctx, time.Minute))

	impostor := NewLocker(client, "klub:vs-alloc:unit_9", "holder-b")
	assert.Error(t, impostor.Unlock(ctx))
	assert.NoError(t, locker.Unlock(ctx))
}

func TestWaitLock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "klub:vs-alloc:unit_3", "holder-a")
	assert.NoError(t, locker.Lock(ctx, 50*time.Millisecond))

	waiter := NewLocker(client, "klub:vs-alloc:unit_3", "holder-b")
	err := waiter.WaitLock(ctx, time.Minute, 20*time.Millisecond)
	assert.Error(t, err)
}
