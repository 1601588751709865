package utils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 15 * time.Minute

type resetEntry struct {
	userID    uint
	expiresAt time.Time
}

var (
	resetStore   = map[string]resetEntry{}
	resetStoreMu sync.Mutex
)

func resetKey(token string) string {
	return "reset:token:" + token
}

// IssueResetToken creates a one-shot password reset token for a user.
// Prefer Redis; fallback to memory.
func IssueResetToken(userID uint) string {
	token := uuid.NewString()
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, resetKey(token), userID, ResetTokenTTL).Err(); err == nil {
			return token
		}
	}
	resetStoreMu.Lock()
	resetStore[token] = resetEntry{userID: userID, expiresAt: time.Now().Add(ResetTokenTTL)}
	resetStoreMu.Unlock()
	return token
}

// ConsumeResetToken validates a token and deletes it so it can be used once.
// Prefer Redis; fallback to memory.
func ConsumeResetToken(token string) (uint, bool) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// GETDEL keeps validate-and-consume atomic (Redis >= 6.2).
		if val, err := rc.GetDel(ctx, resetKey(token)).Uint64(); err == nil {
			return uint(val), true
		}
		// On Redis error (e.g. network), fall through to the memory fallback.
	}
	resetStoreMu.Lock()
	defer resetStoreMu.Unlock()
	entry, ok := resetStore[token]
	if !ok {
		return 0, false
	}
	delete(resetStore, token)
	if time.Now().After(entry.expiresAt) {
		return 0, false
	}
	return entry.userID, true
}
