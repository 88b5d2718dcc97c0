package authapi

import "strings"

// The identity provider answers the same logical question with several
// different field names and wrappers depending on endpoint and version.
// Each concern below is an ordered candidate list evaluated in priority
// order; the first match wins. Keeping these tables data-driven makes the
// normalization testable without any HTTP in the loop.

// tokenKeys are the fields a successful login response may carry the
// provider token under.
var tokenKeys = []string{"LoginResult", "token", "Token"}

// userPayloadKeys are the wrappers a profile response may nest the user
// object under. An empty key means "the root object itself".
var userPayloadKeys = []string{
	"GetLoggedUserResult",
	"LoginUserResult",
	"GetUserResult",
	"User",
	"user",
	"",
}

// messageKeys are the fields an error body may carry its message under.
var messageKeys = []string{
	"message",
	"Message",
	"error",
	"Error",
	"error_description",
	"ErrorMessage",
	"ExceptionMessage",
}

// directNameKeys are single-field display name candidates, consulted when
// the payload has no usable FirstName/LastName pair.
var directNameKeys = []string{
	"PersonFullName",
	"FullName",
	"DisplayName",
	"displayName",
	"Name",
	"name",
}

// emailKeys are the fields a profile payload may carry the email under.
var emailKeys = []string{"Email", "email", "UserEmail", "userEmail"}

// noEmailFallback is returned when neither the payload nor the username
// yields an address.
const noEmailFallback = "No email provided"

// jsonObject is a decoded JSON object payload.
type jsonObject map[string]any

// asObject returns the value as a JSON object, or nil when it is not one.
func asObject(value any) jsonObject {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

// firstString returns the first non-blank string among the candidate keys,
// trimmed. Returns "" when no candidate matches.
func firstString(source jsonObject, keys []string) string {
	if source == nil {
		return ""
	}
	for _, key := range keys {
		if value, ok := source[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// extractToken pulls the provider token out of a login response body.
func extractToken(payload any) string {
	return firstString(asObject(payload), tokenKeys)
}

// extractMessage pulls a human-readable message out of an error body,
// which may be a bare string or an object with one of several keys.
func extractMessage(payload any) string {
	if text, ok := payload.(string); ok {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed
		}
		return ""
	}
	return firstString(asObject(payload), messageKeys)
}

// extractUserPayload unwraps the user object from a profile response.
// Returns nil when no candidate resolves to an object.
func extractUserPayload(payload any) jsonObject {
	root := asObject(payload)
	if root == nil {
		return nil
	}
	for _, key := range userPayloadKeys {
		if key == "" {
			return root
		}
		if obj := asObject(root[key]); obj != nil {
			return obj
		}
	}
	return nil
}

// displayName resolves the user's display name from the profile payload,
// falling back to the username's local part for email-style usernames.
func displayName(userPayload jsonObject, username string) string {
	first := firstString(userPayload, []string{"FirstName", "firstName"})
	last := firstString(userPayload, []string{"LastName", "lastName"})
	if combined := strings.TrimSpace(first + " " + last); combined != "" {
		return combined
	}

	if direct := firstString(userPayload, directNameKeys); direct != "" {
		return direct
	}

	// Avoid showing identical name and email when the provider has no
	// proper display name for an email-style username.
	if at := strings.Index(username, "@"); at >= 0 {
		return username[:at]
	}
	return username
}

// emailAddress resolves the user's email from the profile payload, falling
// back to the username when it looks like an address.
func emailAddress(userPayload jsonObject, username string) string {
	if resolved := firstString(userPayload, emailKeys); resolved != "" {
		return resolved
	}
	if strings.Contains(username, "@") {
		return username
	}
	return noEmailFallback
}
