// Package telegram verifies and parses Telegram Mini App init data.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

var ErrNoUserData = errors.New("telegram: no user data in init data")

// WebAppUser is the `user` payload embedded in init data.
type WebAppUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// VerifyInitData checks the init data signature against the bot token.
// The check string is every key=value pair except hash, sorted, joined by
// newlines; the signing key is HMAC-SHA256 of the bot token keyed by the
// literal "WebAppData". Comparison is constant-time.
func VerifyInitData(initData, botToken string) bool {
	if initData == "" || botToken == "" {
		return false
	}

	var pairs []string
	var gotHash string
	for _, item := range strings.Split(initData, "&") {
		key, _, found := strings.Cut(item, "=")
		if !found {
			continue
		}
		if key == "hash" {
			gotHash = item[len("hash="):]
			continue
		}
		pairs = append(pairs, item)
	}
	if gotHash == "" {
		return false
	}

	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(gotHash), []byte(expected))
}

// ParseUser extracts the user record from init data. Returns ErrNoUserData
// when the user pair is absent or malformed.
func ParseUser(initData string) (*WebAppUser, error) {
	for _, item := range strings.Split(initData, "&") {
		if !strings.HasPrefix(item, "user=") {
			continue
		}
		raw, err := url.QueryUnescape(item[len("user="):])
		if err != nil {
			return nil, ErrNoUserData
		}
		var user WebAppUser
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, ErrNoUserData
		}
		if user.ID == 0 {
			return nil, ErrNoUserData
		}
		return &user, nil
	}
	return nil, ErrNoUserData
}
