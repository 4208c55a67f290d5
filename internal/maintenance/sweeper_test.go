package maintenance

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarceta/meet-accounts-be/internal/auth"
	"github.com/dmarceta/meet-accounts-be/internal/models"
)

// fakeTokenService counts purge calls.
type fakeTokenService struct {
	mu     sync.Mutex
	purges int
}

func (f *fakeTokenService) Issue(models.User) (models.TokenPair, error) {
	return models.TokenPair{}, nil
}

func (f *fakeTokenService) Refresh(string) (models.TokenPair, error) {
	return models.TokenPair{}, nil
}

func (f *fakeTokenService) Revoke(string) error { return nil }

func (f *fakeTokenService) VerifyAccess(string) (*auth.Claims, error) { return nil, nil }

func (f *fakeTokenService) PurgeExpired() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purges++
	return 0, nil
}

func (f *fakeTokenService) purgeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purges
}

func TestNewSweeper_RejectsBadSchedule(t *testing.T) {
	t.Parallel()

	_, err := NewSweeper(&fakeTokenService{}, "not a cron expression")
	assert.Error(t, err)

	_, err = NewSweeper(&fakeTokenService{}, "@hourly")
	assert.NoError(t, err)
}

func TestSweeper_RunsImmediatelyAndStops(t *testing.T) {
	t.Parallel()

	svc := &fakeTokenService{}
	sweeper, err := NewSweeper(svc, "@hourly")
	require.NoError(t, err)

	go sweeper.Run()

	require.Eventually(t, func() bool { return svc.purgeCount() >= 1 }, time.Second, 10*time.Millisecond)
	sweeper.Stop()
}
