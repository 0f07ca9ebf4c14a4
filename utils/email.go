package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

func smtpConfigured() (host, port, user, pass, fromName string, ok bool) {
	host = os.Getenv("SMTP_HOST")
	port = os.Getenv("SMTP_PORT")
	user = os.Getenv("SMTP_USERNAME")
	pass = os.Getenv("SMTP_PASSWORD")
	fromName = EnvOrDefault("SMTP_FROM_NAME", "Horizon Car Rental")
	ok = host != "" && port != "" && user != "" && pass != ""
	return
}

func sanitizeHeaderValue(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
}

func htmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}

// sendMultipart assembles a MIME multipart/alternative message and
// ships it over SMTP.
func sendMultipart(recipient, subject, plainBody, htmlBody string) error {
	host, port, user, pass, fromName, ok := smtpConfigured()
	if !ok {
		log.Printf("[MOCK EMAIL] to:%s subject:%q", recipient, subject)
		return nil
	}

	from := fmt.Sprintf("%s <%s>", fromName, user)
	auth := smtp.PlainAuth("", user, pass, host)
	addr := fmt.Sprintf("%s:%s", host, port)
	boundary := "----=_RENTAL_EMAIL_BOUNDARY"

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", sanitizeHeaderValue(subject)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, user, []string{recipient}, []byte(sb.String())); err != nil {
		log.Printf("Failed to send email to %s: %v", recipient, err)
		return err
	}

	log.Printf("Email sent to %s", recipient)
	return nil
}

const emailStyle = `body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.label { font-weight:700; width:160px; display:inline-block; vertical-align:top; }
.btn { display:inline-block; padding:12px 20px; background:#0b74ff; color:#fff; text-decoration:none; border-radius:6px; margin-top:16px; }`

// SendBookingConfirmationEmail mails the confirmation for a freshly
// created booking.
func SendBookingConfirmationEmail(recipient, name, referenceCode, vehicleLabel, startDate, endDate string, totalPrice float64) error {
	name = sanitizeHeaderValue(name)

	plainBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your booking is confirmed.\n\n"+
			"Reference: %s\n"+
			"Vehicle: %s\n"+
			"Pick-up: %s\n"+
			"Return: %s\n"+
			"Total: $%.2f\n\n"+
			"We look forward to seeing you.\n",
		name, referenceCode, vehicleLabel, startDate, endDate, totalPrice,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Booking Confirmation</title>
<style>
%s
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Booking Confirmed</h2>
    <p>Hi %s,</p>
    <p>Thank you for booking with us. Your rental details:</p>
    <p><span class="label">Reference:</span> %s</p>
    <p><span class="label">Vehicle:</span> %s</p>
    <p><span class="label">Pick-up:</span> %s</p>
    <p><span class="label">Return:</span> %s</p>
    <p><span class="label">Total:</span> $%.2f</p>
    <p>If you have any questions, just reply to this email.</p>
  </div>
</div>
</body>
</html>`,
		emailStyle, htmlEscape(name), referenceCode, htmlEscape(vehicleLabel), startDate, endDate, totalPrice,
	)

	return sendMultipart(recipient, fmt.Sprintf("Booking confirmed — %s", referenceCode), plainBody, htmlBody)
}

// SendVerificationEmail mails the account verification link after
// registration.
func SendVerificationEmail(recipient, name, verifyLink string) error {
	name = sanitizeHeaderValue(name)
	verifyLink = sanitizeHeaderValue(verifyLink)

	plainBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Please verify your email address using the link below:\n%s\n\n"+
			"If you did not create this account, you can ignore this email.\n",
		name, verifyLink,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Verify your email</title>
<style>
%s
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Verify your email</h2>
    <p>Hi %s,</p>
    <p>Click the button below to verify your email address.</p>
    <a class="btn" href="%s" target="_blank">Verify email</a>
    <p>If you did not create this account, you can ignore this email.</p>
  </div>
</div>
</body>
</html>`,
		emailStyle, htmlEscape(name), verifyLink,
	)

	return sendMultipart(recipient, "Verify your email", plainBody, htmlBody)
}

// SendPasswordResetEmail mails a password reset link.
func SendPasswordResetEmail(recipient, name, resetLink string) error {
	name = sanitizeHeaderValue(name)
	resetLink = sanitizeHeaderValue(resetLink)

	plainBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"You requested a password reset. Use the link below:\n%s\n\n"+
			"If you did not request this, you can ignore this email.\n",
		name, resetLink,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Password reset</title>
<style>
%s
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Reset your password</h2>
    <p>Hi %s,</p>
    <p>Click the button below to choose a new password. The link expires in one hour.</p>
    <a class="btn" href="%s" target="_blank">Reset password</a>
    <p>If you did not request this, you can ignore this email.</p>
  </div>
</div>
</body>
</html>`,
		emailStyle, htmlEscape(name), resetLink,
	)

	return sendMultipart(recipient, "Reset your password", plainBody, htmlBody)
}
