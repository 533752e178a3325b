package grpc

import (
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/api"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 128
	minOrgIDLen    = 3
	maxOrgIDLen    = 100
)

// validateRegister checks the shape of a registration request before it
// reaches the auth service.
func validateRegister(req *api.RegisterRequest) error {
	var problems []string

	email := strings.TrimSpace(req.Email)
	if addr, err := mail.ParseAddress(email); email == "" || err != nil || addr.Address != email {
		problems = append(problems, "email must be a valid email address")
	}
	if n := len(req.Password); n < minPasswordLen || n > maxPasswordLen {
		problems = append(problems, "password must be 6 to 128 characters")
	}
	if n := len(req.OrganizationID); n < minOrgIDLen || n > maxOrgIDLen {
		problems = append(problems, "organization id must be 3 to 100 characters")
	}

	if len(problems) > 0 {
		return status.Error(codes.InvalidArgument, "invalid request data: "+strings.Join(problems, "; "))
	}
	return nil
}
