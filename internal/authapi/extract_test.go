package authapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode parses a JSON literal the way the client's transport does.
func decode(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"LoginResult wrapper", `{"LoginResult":"abc123"}`, "abc123"},
		{"lowercase token", `{"token":"abc123"}`, "abc123"},
		{"capitalized token", `{"Token":"abc123"}`, "abc123"},
		{"LoginResult wins over token", `{"LoginResult":"first","token":"second"}`, "first"},
		{"blank candidate skipped", `{"LoginResult":"  ","token":"second"}`, "second"},
		{"whitespace trimmed", `{"token":"  abc123  "}`, "abc123"},
		{"no token field", `{"status":"ok"}`, ""},
		{"token wrong type", `{"token":42}`, ""},
		{"not an object", `["abc123"]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractToken(decode(t, tt.body)))
		})
	}
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"lowercase message", `{"message":"nope"}`, "nope"},
		{"capitalized Message", `{"Message":"nope"}`, "nope"},
		{"error field", `{"error":"nope"}`, "nope"},
		{"error_description", `{"error_description":"nope"}`, "nope"},
		{"ExceptionMessage", `{"ExceptionMessage":"nope"}`, "nope"},
		{"priority order", `{"Message":"second","message":"first"}`, "first"},
		{"bare string body", `"plain text error"`, "plain text error"},
		{"blank string body", `"   "`, ""},
		{"no message", `{"code":500}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMessage(decode(t, tt.body)))
		})
	}
}

func TestExtractUserPayload(t *testing.T) {
	t.Run("wrapped under GetLoggedUserResult", func(t *testing.T) {
		payload := extractUserPayload(decode(t, `{"GetLoggedUserResult":{"Email":"a@b.c"}}`))
		require.NotNil(t, payload)
		assert.Equal(t, "a@b.c", payload["Email"])
	})

	t.Run("wrapped under User", func(t *testing.T) {
		payload := extractUserPayload(decode(t, `{"User":{"Email":"a@b.c"}}`))
		require.NotNil(t, payload)
		assert.Equal(t, "a@b.c", payload["Email"])
	})

	t.Run("root object fallback", func(t *testing.T) {
		payload := extractUserPayload(decode(t, `{"Email":"a@b.c"}`))
		require.NotNil(t, payload)
		assert.Equal(t, "a@b.c", payload["Email"])
	})

	t.Run("wrapper wins over root", func(t *testing.T) {
		payload := extractUserPayload(decode(t, `{"Email":"root@b.c","User":{"Email":"wrapped@b.c"}}`))
		require.NotNil(t, payload)
		assert.Equal(t, "wrapped@b.c", payload["Email"])
	})

	t.Run("non-object body", func(t *testing.T) {
		assert.Nil(t, extractUserPayload(decode(t, `[1,2,3]`)))
	})
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		username string
		want     string
	}{
		{"first and last", `{"FirstName":"Jane","LastName":"Doe"}`, "jdoe", "Jane Doe"},
		{"first only", `{"FirstName":"Jane"}`, "jdoe", "Jane"},
		{"lowercase variants", `{"firstName":"Jane","lastName":"Doe"}`, "jdoe", "Jane Doe"},
		{"PersonFullName", `{"PersonFullName":"Jane Doe"}`, "jdoe", "Jane Doe"},
		{"FullName", `{"FullName":"Jane Doe"}`, "jdoe", "Jane Doe"},
		{"DisplayName", `{"DisplayName":"Jane Doe"}`, "jdoe", "Jane Doe"},
		{"name pair wins over direct", `{"FirstName":"Jane","LastName":"Doe","FullName":"Other"}`, "jdoe", "Jane Doe"},
		{"email username local part", `{}`, "jane@example.com", "jane"},
		{"plain username fallback", `{}`, "jdoe", "jdoe"},
		{"nil payload", ``, "jdoe", "jdoe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload jsonObject
			if tt.body != "" {
				payload = asObject(decode(t, tt.body))
			}
			assert.Equal(t, tt.want, displayName(payload, tt.username))
		})
	}
}

func TestEmailAddress(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		username string
		want     string
	}{
		{"Email field", `{"Email":"jane@example.com"}`, "jdoe", "jane@example.com"},
		{"lowercase email", `{"email":"jane@example.com"}`, "jdoe", "jane@example.com"},
		{"UserEmail", `{"UserEmail":"jane@example.com"}`, "jdoe", "jane@example.com"},
		{"email-style username fallback", `{}`, "jane@example.com", "jane@example.com"},
		{"no email anywhere", `{}`, "jdoe", "No email provided"},
		{"nil payload plain username", ``, "jdoe", "No email provided"},
		{"nil payload email username", ``, "jane@example.com", "jane@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload jsonObject
			if tt.body != "" {
				payload = asObject(decode(t, tt.body))
			}
			assert.Equal(t, tt.want, emailAddress(payload, tt.username))
		})
	}
}
