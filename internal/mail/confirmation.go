package mail

import (
	"fmt"
	"html"
)

// BookingConfirmation holds the fields rendered into a confirmation email.
type BookingConfirmation struct {
	BookingID    string
	UserEmail    string
	ListingTitle string
}

// ConfirmationSubject returns the subject line for a booking confirmation.
func ConfirmationSubject(listingTitle string) string {
	return "Booking Confirmation - " + listingTitle
}

// NewConfirmationMessage renders the confirmation email for a booking.
func NewConfirmationMessage(b BookingConfirmation) Message {
	return Message{
		To:       b.UserEmail,
		Subject:  ConfirmationSubject(b.ListingTitle),
		TextBody: confirmationText(b),
		HTMLBody: confirmationHTML(b),
	}
}

func confirmationText(b BookingConfirmation) string {
	return `
=====================================
        BOOKING CONFIRMATION
=====================================
Booking ID: ` + b.BookingID + `
Listing:    ` + b.ListingTitle + `

Thank you for your booking. We will
let you know as soon as your payment
is confirmed.

=====================================
      Enjoy your stay with us!
=====================================
`
}

func confirmationHTML(b BookingConfirmation) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
	<title>Booking Confirmation</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f7f9fc;">
	<table align="center" border="0" cellpadding="0" cellspacing="0" width="600" style="border-collapse: collapse; background-color: #ffffff;">
		<tr>
			<td style="padding: 30px; color: #333333; font-size: 16px; line-height: 1.6;">
				<h1 style="margin-top: 0; font-size: 24px;">Booking Confirmation</h1>
				<p>Thank you for booking <strong>%s</strong>.</p>
				<p>Booking reference: <strong>%s</strong></p>
				<p style="margin-bottom: 0;">Enjoy your stay with us!</p>
			</td>
		</tr>
	</table>
</body>
</html>`, html.EscapeString(b.ListingTitle), html.EscapeString(b.BookingID))
}
