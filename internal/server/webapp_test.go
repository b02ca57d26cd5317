package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-TOKEN"

// signInitData builds a correctly signed init data string the way the
// Telegram client would.
func signInitData(botToken string, values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}

	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	secret := mac.Sum(nil)

	mac = hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(pairs, "\n")))
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))

	return values.Encode()
}

func testInitData() string {
	return signInitData(testBotToken, url.Values{
		"auth_date": {"1756100000"},
		"query_id":  {"AAF9xyz"},
		"user":      {`{"id":1001,"first_name":"Ananya","username":"ananya"}`},
	})
}

func TestValidateWebAppInitData(t *testing.T) {
	values, err := ValidateWebAppInitData(testInitData(), testBotToken)
	require.NoError(t, err)

	user, err := ParseWebAppUser(values)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), user.ID)
	assert.Equal(t, "Ananya", user.FirstName)
}

func TestValidateWebAppInitDataRejectsMutation(t *testing.T) {
	data := testInitData()

	mutated := strings.Replace(data, "1001", "2002", 1)
	_, err := ValidateWebAppInitData(mutated, testBotToken)
	assert.Error(t, err)
}

func TestValidateWebAppInitDataRejectsWrongToken(t *testing.T) {
	_, err := ValidateWebAppInitData(testInitData(), "999999:OTHER-TOKEN")
	assert.Error(t, err)
}

func TestValidateWebAppInitDataRejectsMissingHash(t *testing.T) {
	_, err := ValidateWebAppInitData("auth_date=1756100000&user=%7B%22id%22%3A1%7D", testBotToken)
	assert.Error(t, err)
}

func TestParseWebAppUserRejectsBrokenUser(t *testing.T) {
	_, err := ParseWebAppUser(url.Values{})
	assert.Error(t, err)

	_, err = ParseWebAppUser(url.Values{"user": {"not json"}})
	assert.Error(t, err)

	_, err = ParseWebAppUser(url.Values{"user": {`{"first_name":"NoID"}`}})
	assert.Error(t, err)
}
