package control

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MakeUnlockToken signs bike_id:user_id:ts with the shared secret and
// returns "<ts>.<first 16 hex chars of the HMAC-SHA256>". Device simulators
// verify this exact shape, so the format must not drift.
func MakeUnlockToken(secret, bikeID, userID string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s:%s:%d", bikeID, userID, ts)
	sig := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("%d.%s", ts, sig[:16])
}
