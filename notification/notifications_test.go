package notification

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestEnqueue(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should never block the caller when the outbox is full", func(t *testing.T) {
		originalOutbox := Outbox
		defer func() { Outbox = originalOutbox }()
		Outbox = make(chan Notification, 1)

		Enqueue(Notification{Kind: KindConfirmation, To: "a@test.local"})
		// the second enqueue is dropped, not blocked
		done := make(chan struct{})
		go func() {
			Enqueue(Notification{Kind: KindConfirmation, To: "b@test.local"})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("enqueue blocked on a saturated outbox")
		}
		Expect(len(Outbox)).To(Equal(1))
	})
}

func TestStartNotifier(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should drain the outbox through the send function", func(t *testing.T) {
		originalOutbox, originalSend := Outbox, SendFunc
		defer func() { Outbox, SendFunc = originalOutbox, originalSend }()
		Outbox = make(chan Notification, 4)

		sent := make(chan Notification, 4)
		SendFunc = func(n Notification) error {
			sent <- n
			return nil
		}

		StartNotifier(Config{})
		Enqueue(Notification{Kind: KindConfirmation, To: "a@test.local", Token: "123456"})
		Enqueue(Notification{Kind: KindOrderDelivered, To: "b@test.local", Amount: 3})

		Eventually(func() int { return len(sent) }, time.Second).Should(Equal(2))
	})
}

func TestBuildMessage(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should render the confirmation email with the code", func(t *testing.T) {
		subject, body := buildMessage(Notification{Kind: KindConfirmation, Name: "Ana", Token: "123456"},
			"https://app.test")
		Expect(subject).ToNot(BeEmpty())
		Expect(body).To(ContainSubstring("Ana"))
		Expect(body).To(ContainSubstring("123456"))
		Expect(body).To(ContainSubstring("10 minutes"))
	})

	t.Run("should render the delivered email with amount and address", func(t *testing.T) {
		_, body := buildMessage(Notification{Kind: KindOrderDelivered, Name: "Ana", Amount: 3,
			Address: "Gran Via 1, Madrid, Spain"}, "https://app.test")
		Expect(body).To(ContainSubstring("3"))
		Expect(body).To(ContainSubstring("Gran Via 1, Madrid, Spain"))
	})
}
