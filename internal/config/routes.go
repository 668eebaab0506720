package config

// Endpoint path templates, relative to the API base URL. Placeholders in
// braces are filled (and path-escaped) by the API client.
const (
	EndpointRegisterUser         = "/auth/register/user"
	EndpointRegisterOrganization = "/auth/register/organization"
	EndpointLogin                = "/auth/login"
	EndpointVerifyEmail          = "/auth/verify-email"
	EndpointResendCode           = "/auth/resend-code"
	EndpointForgotPassword       = "/auth/forgot-password"
	EndpointVerifyResetCode      = "/auth/verify-reset-code"
	EndpointResetPassword        = "/auth/reset-password"
	EndpointMe                   = "/auth/me"

	EndpointDashboardStats     = "/user/dashboard/stats"
	EndpointCertificates       = "/user/certificates"
	EndpointCertificateQRViews = "/user/certificates/qr-views"
	EndpointActivities         = "/user/activities"
	EndpointTemplates          = "/user/templates"

	EndpointSkills          = "/skills"
	EndpointTrendingSkills  = "/skills/trending"
	EndpointSkillCategories = "/skills/categories"
	EndpointSkill           = "/skills/{id}"
	EndpointCanAttempt      = "/skills/{id}/can-attempt"
	EndpointSkillProgress   = "/skills/{id}/progress"

	EndpointTestStatus  = "/tests/{skillId}/status"
	EndpointStartTest   = "/tests/{skillId}/start"
	EndpointTestSession = "/tests/session/{sessionId}"
	EndpointSaveAnswer  = "/tests/session/{sessionId}/answer"
	EndpointSubmitTest  = "/tests/session/{sessionId}/submit"
	EndpointTestHistory = "/tests/{skillId}/history"

	EndpointVerifyCertificate = "/verify/{certificateCode}"
)

// Pages names the page path each command runs as. A 401 received while on a
// page matching the allow-list does not redirect.
type Pages struct {
	Login          string
	Signup         string
	Verify         string
	ForgotPassword string
	SetPassword    string
	Dashboard      string
	OrgDashboard   string
	Certificate    string
	AllowList      []string
}

// DefaultPages returns the page table of the CertiPro web client.
func DefaultPages() Pages {
	return Pages{
		Login:          "index.html",
		Signup:         "signup.html",
		Verify:         "verify.html",
		ForgotPassword: "forgot_password.html",
		SetPassword:    "set_pswd.html",
		Dashboard:      "dashboard.html",
		OrgDashboard:   "org_dashboard.html",
		Certificate:    "verify_certificate.html",
		AllowList:      []string{"index.html", "signup", "verify", "forgot", "set_pswd"},
	}
}
