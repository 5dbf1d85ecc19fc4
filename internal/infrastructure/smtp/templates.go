package smtp

import "fmt"

// Transactional email bodies.

const otpSubject = "Verify Your SupaPay Account"

// OTPEmail renders the verification-code email.
func OTPEmail(code string, expiryMinutes int) (subject, html string) {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Verify Your Email Address</h2>
  <p>Welcome to SupaPay! Please use the following verification code to complete your registration:</p>
  <div style="font-size: 32px; font-weight: bold; text-align: center; padding: 20px; background: #f8f9fa; border-radius: 8px; letter-spacing: 5px;">%s</div>
  <p>This verification code will expire in %d minutes.</p>
  <p style="color: #dc3545; font-size: 14px;">Never share this code with anyone. SupaPay will never ask for it.
  If you didn't request this, please ignore this email.</p>
</div>`, code, expiryMinutes)
	return otpSubject, body
}

// WelcomeEmail renders the post-verification welcome email.
func WelcomeEmail(name string) (subject, html string) {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Welcome to SupaPay, %s!</h2>
  <p>Your email has been successfully verified. You can now access all SupaPay features.</p>
  <p><strong>Next steps:</strong></p>
  <ul>
    <li>Complete your profile setup</li>
    <li>Verify your identity (KYC)</li>
    <li>Start managing your finances</li>
  </ul>
  <p>Best regards,<br>The SupaPay Team</p>
</div>`, name)
	return "Welcome to SupaPay!", body
}

// ResetEmail renders the password-reset email with the tokenized link.
func ResetEmail(resetURL string, expiryMinutes int) (subject, html string) {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Reset Your Password</h2>
  <p>You requested to reset your SupaPay password. Click the button below to create a new one:</p>
  <p style="text-align: center;">
    <a href="%s" style="display: inline-block; padding: 15px 30px; background-color: #ffa600; color: white; text-decoration: none; border-radius: 8px; font-weight: bold;">Reset Password</a>
  </p>
  <p>If the button doesn't work, copy and paste this link into your browser:</p>
  <div style="font-family: monospace; background: #f8f9fa; padding: 15px; border-radius: 8px; word-break: break-all;">%s</div>
  <p style="color: #dc3545; font-size: 14px;">This link expires in %d minutes. If you didn't request a reset, ignore this email.</p>
</div>`, resetURL, resetURL, expiryMinutes)
	return "Reset Your SupaPay Password", body
}
