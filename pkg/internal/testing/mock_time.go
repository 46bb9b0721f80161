package testing

import (
	"sync"
	"time"
)

// MockNowService is a clock that moves only when told to
type MockNowService struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns current mocked time
func (svc *MockNowService) Now() time.Time {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.now
}

// Advance moves the clock forward and returns new time
func (svc *MockNowService) Advance(d time.Duration) time.Time {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.now = svc.now.Add(d)
	return svc.now
}

// NewMockNowService returns a clock stopped at now
func NewMockNowService(now time.Time) *MockNowService {
	return &MockNowService{now: now}
}
