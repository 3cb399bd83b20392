package session

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"sync"
	"time"
)

type otpEntry struct {
	code      string
	expiresAt time.Time
	attempts  int
}

type otpManager struct {
	mu          sync.Mutex
	entries     map[string]otpEntry
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

func newOTPManager(ttl time.Duration, maxAttempts int, now func() time.Time) *otpManager {
	return &otpManager{
		entries:     make(map[string]otpEntry),
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         now,
	}
}

func (m *otpManager) Issue(key string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	m.mu.Lock()
	m.entries[key] = otpEntry{code: code, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return code, nil
}

func (m *otpManager) Verify(key, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return ErrOTPNotRequested
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(entry.code), []byte(code)) != 1 {
		entry.attempts++
		if entry.attempts >= m.maxAttempts {
			delete(m.entries, key)
			return ErrOTPExpired
		}
		m.entries[key] = entry
		return ErrOTPMismatch
	}
	delete(m.entries, key)
	return nil
}
