package events

// Topics on the in-process bus. Email delivery is decoupled from the request
// path: the auth flow publishes after commit, a consumer sends the mail.
const (
	TopicEmailVerificationRequested = "email.verification_requested"
	TopicPasswordResetRequested     = "email.password_reset_requested"
)

// EmailTokenPayload is the JSON body for both email topics.
type EmailTokenPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
