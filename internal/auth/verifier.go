package auth

import (
	"context"
	"errors"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/metrics"
	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/store"
)

// Verifier re-authenticates a declared actor for an electronic signature.
// Verification never relies on the caller's session: a signature event must
// independently prove identity at the moment of signing.
type Verifier struct {
	store store.Store
}

// NewVerifier creates a Verifier over the identity store.
func NewVerifier(s store.Store) *Verifier {
	return &Verifier{store: s}
}

// Verify checks the username/password pair and, when requiredRoles is
// non-empty, that the account holds one of those roles. Bad credentials and
// inactive accounts are indistinguishable to the caller beyond the error
// text; a role miss on valid credentials is an AuthorizationError.
func (v *Verifier) Verify(ctx context.Context, username, password string, requiredRoles ...model.Role) (*model.User, error) {
	user, err := v.verify(ctx, username, password, requiredRoles)
	if err != nil {
		metrics.SignatureVerificationsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.SignatureVerificationsTotal.WithLabelValues("success").Inc()
	return user, nil
}

func (v *Verifier) verify(ctx context.Context, username, password string, requiredRoles []model.Role) (*model.User, error) {
	user, err := v.store.FindUserByUsername(ctx, username)
	if err != nil {
		var notFound *apperr.NotFoundError
		if errors.As(err, &notFound) {
			return nil, &apperr.AuthenticationError{Message: "invalid signature credentials"}
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, &apperr.AuthenticationError{Message: "account is inactive"}
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, &apperr.AuthenticationError{Message: "invalid signature credentials"}
	}
	if len(requiredRoles) > 0 && !hasRole(user.Role, requiredRoles) {
		return nil, &apperr.AuthorizationError{Required: requiredRoles}
	}
	return user, nil
}

func hasRole(role model.Role, allowed []model.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
