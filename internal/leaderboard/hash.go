package leaderboard

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SubmissionHash computes the integrity hash over the payload fields. This
// is a plain tamper check, not an anti-cheat scheme: the canonical string is
// hashed with SHA-256 and hex-encoded. The Hash field itself is excluded.
func SubmissionHash(sub Submission) string {
	canonical := fmt.Sprintf("%s|%d|%s|%d|%.3f",
		sub.ChallengeID, sub.Week, sub.PlayerID, sub.Score, sub.Duration)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
