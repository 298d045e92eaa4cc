package domain

// CertificateRequest is the decoded body of a generate call. It only lives
// for the duration of one request.
type CertificateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
