package mail

import "fmt"

// Job names shared between the auth service (producer) and the mail worker
// (consumer).
const (
	JobSendVerificationEmail = "sendVerificationEmail"
	JobSendResetPwdEmail     = "sendResetPwdEmail"
)

// VerificationEmailPayload carries the raw token; the worker composes the
// final link so the frontend URL lives in one place.
type VerificationEmailPayload struct {
	To    string `json:"to"`
	Token string `json:"token"`
}

// ResetPwdEmailPayload carries the fully composed reset link.
type ResetPwdEmailPayload struct {
	To  string `json:"to"`
	URL string `json:"url"`
}

func VerificationEmail(to, verifyURL string) Message {
	return Message{
		To:      to,
		Subject: "Verify your email address",
		Text: fmt.Sprintf(
			"Welcome to devcrm!\n\n"+
				"Please confirm your email address by opening the link below:\n\n"+
				"%s\n\n"+
				"The link expires in 24 hours. If you did not create an account, you can ignore this email.\n",
			verifyURL),
	}
}

func ResetPasswordEmail(to, resetURL string) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		Text: fmt.Sprintf(
			"We received a request to reset your password.\n\n"+
				"Open the link below to choose a new one:\n\n"+
				"%s\n\n"+
				"The link expires in 1 hour. If you did not request a reset, you can ignore this email.\n",
			resetURL),
	}
}
