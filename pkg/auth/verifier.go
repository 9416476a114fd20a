package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verifier turns a raw bearer token into an Actor.
type Verifier interface {
	Verify(ctx context.Context, token string) (Actor, error)
}

// NewVerifier builds the verifier selected by cfg.Mode. In oidc mode without
// a JWKS URL it performs provider discovery against cfg.Issuer.
func NewVerifier(ctx context.Context, cfg *Config) (Verifier, error) {
	switch cfg.Mode {
	case ModeHMAC:
		return NewHMACVerifier(cfg), nil
	case ModeOIDC:
		return NewOIDCVerifier(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
}

// Claims is the token payload agora reads.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type hmacVerifier struct {
	secret    []byte
	adminRole string
	opts      []jwt.ParserOption
}

// NewHMACVerifier validates HS256 tokens signed with cfg.Secret.
func NewHMACVerifier(cfg *Config) Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &hmacVerifier{
		secret:    []byte(cfg.Secret),
		adminRole: cfg.AdminRole,
		opts:      opts,
	}
}

func (v *hmacVerifier) Verify(_ context.Context, token string) (Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}

	return Actor{ID: id, SystemAdmin: slices.Contains(claims.Roles, v.adminRole)}, nil
}

type oidcVerifier struct {
	verifier  *oidc.IDTokenVerifier
	issuer    string
	adminRole string
}

// NewOIDCVerifier validates tokens issued by an OpenID Connect provider.
// Subjects that are not UUIDs are mapped to a stable name-based UUID.
func NewOIDCVerifier(ctx context.Context, cfg *Config) (Verifier, error) {
	oc := &oidc.Config{ClientID: cfg.Audience}

	var verifier *oidc.IDTokenVerifier
	if cfg.JWKSURL != "" {
		verifier = oidc.NewVerifier(cfg.Issuer, oidc.NewRemoteKeySet(ctx, cfg.JWKSURL), oc)
	} else {
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery: %w", err)
		}
		verifier = provider.Verifier(oc)
	}

	return &oidcVerifier{
		verifier:  verifier,
		issuer:    cfg.Issuer,
		adminRole: cfg.AdminRole,
	}, nil
}

func (v *oidcVerifier) Verify(ctx context.Context, token string) (Actor, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var claims struct {
		Roles []string `json:"roles"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return Actor{
		ID:          SubjectID(v.issuer, idToken.Subject),
		SystemAdmin: slices.Contains(claims.Roles, v.adminRole),
	}, nil
}

// SubjectID parses subject as a UUID, falling back to a SHA-1 name UUID of
// issuer and subject.
func SubjectID(issuer, subject string) uuid.UUID {
	if id, err := uuid.Parse(subject); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(issuer+"#"+subject))
}
