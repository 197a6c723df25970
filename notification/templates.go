package notification

import "fmt"

func buildMessage(n Notification, appURL string) (subject string, body string) {
	switch n.Kind {
	case KindConfirmation:
		subject = "Aquaflow - Confirm your account"
		body = fmt.Sprintf(`<p>Hello %s, your Aquaflow account is almost ready, you only need to confirm it.</p>
<p>Visit the following link:</p>
<a href="%s/confirm">Confirm account</a>
<p>Enter the following code: <b>%s</b></p>
<p>This code expires in 10 minutes</p>`, n.Name, appURL, n.Token)
	case KindPasswordReset:
		subject = "Aquaflow - Reset your password"
		body = fmt.Sprintf(`<p>Hello %s, you requested to reset your password.</p>
<p>Visit the following link:</p>
<a href="%s/new-password">Reset password</a>
<p>Enter the following code: <b>%s</b></p>
<p>This code expires in 10 minutes</p>`, n.Name, appURL, n.Token)
	case KindOrderDelivered:
		subject = "Aquaflow - Order delivered"
		body = fmt.Sprintf(`<p>Hello %s, your order of %d jugs for the address %s has been delivered.</p>`,
			n.Name, n.Amount, n.Address)
	}
	return subject, body
}
