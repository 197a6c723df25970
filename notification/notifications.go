package notification

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type Kind string

const (
	KindConfirmation   Kind = "confirmation"
	KindPasswordReset  Kind = "password-reset"
	KindOrderDelivered Kind = "order-delivered"
)

type Notification struct {
	Kind Kind

	To   string
	Name string

	// one-time code for confirmation / password-reset kinds
	Token string

	// order fields for the delivered kind
	Amount  int
	Address string
}

type Config struct {
	SmtpHost string
	SmtpPort int
	Username string
	Password string
	From     string

	// AppURL is the public frontend address embedded in email links
	AppURL string
}

func ConfigFromEnv() Config {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	c := Config{
		SmtpHost: os.Getenv("SMTP_HOST"),
		SmtpPort: port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		AppURL:   os.Getenv("APP_URL"),
	}
	if c.From == "" {
		c.From = c.Username
	}
	return c
}

var (
	// Outbox decouples dispatch from the request cycle: senders enqueue and
	// return immediately, the notifier worker drains in the background.
	Outbox = make(chan Notification, 256)

	EnqueueFunc = Enqueue
	SendFunc    = send

	activeConfig Config
)

// Enqueue never blocks the caller: when the outbox is saturated the
// notification is dropped and logged, the surrounding operation proceeds.
func Enqueue(n Notification) {
	select {
	case Outbox <- n:
	default:
		logrus.Warnf("notification outbox is full, dropping %s to %s", n.Kind, n.To)
	}
}

// StartNotifier drains the outbox until the channel is closed. Send
// failures are logged and never surface to the enqueuing request.
func StartNotifier(c Config) {
	activeConfig = c
	go func() {
		for n := range Outbox {
			if err := SendFunc(n); err != nil {
				logrus.Warnf("failed to send %s notification to %s: %v", n.Kind, n.To, err)
			} else {
				logrus.Infof("sent %s notification to %s", n.Kind, n.To)
			}
		}
	}()
}

func send(n Notification) error {
	subject, body := buildMessage(n, activeConfig.AppURL)

	m := gomail.NewMessage()
	m.SetHeader("From", activeConfig.From)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(activeConfig.SmtpHost, activeConfig.SmtpPort, activeConfig.Username, activeConfig.Password)
	return d.DialAndSend(m)
}
