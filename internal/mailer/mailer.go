package mailer

import (
	"context"
	"fmt"
	"time"
)

// Message is a single outbound email.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers email messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// OTPMessage renders the email carrying a one-time code.
func OTPMessage(toEmail, toName, code, purpose string, ttl time.Duration) Message {
	subject := "Verify your email address"
	intro := "Use this code to verify your email address"
	if purpose == "password_reset" {
		subject = "Reset your password"
		intro = "Use this code to reset your password"
	}
	minutes := int(ttl.Minutes())
	return Message{
		ToEmail: toEmail,
		ToName:  toName,
		Subject: subject,
		Text:    fmt.Sprintf("%s: %s\nThe code expires in %d minutes.", intro, code, minutes),
		HTML: fmt.Sprintf(`<p>%s:</p><p style="font-size:24px"><b>%s</b></p><p>The code expires in %d minutes.</p>`,
			intro, code, minutes),
	}
}

// BookingConfirmedMessage renders the booking confirmation email.
func BookingConfirmedMessage(toEmail, toName, bookingID, roomNumber string, checkIn, checkOut time.Time, total string) Message {
	const layout = "Mon, 02 Jan 2006"
	text := fmt.Sprintf("Your booking %s is confirmed.\nRoom: %s\nCheck-in: %s\nCheck-out: %s\nTotal: %s",
		bookingID, roomNumber, checkIn.Format(layout), checkOut.Format(layout), total)
	html := fmt.Sprintf(`<p>Your booking <b>%s</b> is confirmed.</p><ul><li>Room: %s</li><li>Check-in: %s</li><li>Check-out: %s</li><li>Total: %s</li></ul>`,
		bookingID, roomNumber, checkIn.Format(layout), checkOut.Format(layout), total)
	return Message{
		ToEmail: toEmail,
		ToName:  toName,
		Subject: "Your booking is confirmed",
		Text:    text,
		HTML:    html,
	}
}
