package mail

import "fmt"

const (
	RegisterSubject = "Welcome to Our App!"
	ResetSubject    = "Password Reset OTP"
)

func RegisterOTPBody(name string, code int) string {
	return fmt.Sprintf(`<h1>Welcome, %s!</h1>
<p>Thank you for registering. Your One-Time Password (OTP) is: <strong>%04d</strong></p>
<p>This OTP is valid for a short period. Please do not share it with anyone.</p>`, name, code)
}

func ResetOTPBody(name string, code int) string {
	return fmt.Sprintf(`<h1>Hello, %s!</h1>
<p>Your One-Time Password (OTP) is: <strong>%04d</strong></p>
<p>This OTP is valid for a short period. Please do not share it with anyone.</p>
<p>This code will expire in 10 minutes.</p>`, name, code)
}
