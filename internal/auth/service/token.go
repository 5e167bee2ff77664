package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/internal/obs"
	"github.com/crateworks/wmsauth/pkg/cryptox"
	"github.com/crateworks/wmsauth/pkg/jwtx"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// TokenService is the boundary between credentials and tokens: it turns
// a successful login into a session plus a signed pair, and a valid
// refresh into a rotated pair. All session bookkeeping is delegated to
// the registry.
type TokenService struct {
	Codec    *jwtx.Codec
	Store    store.Store
	Registry *SessionRegistry

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Authenticate verifies credentials and opens a device-bound session.
// Credential failures are indistinguishable to the caller whether the
// email is unknown or the password wrong.
func (s *TokenService) Authenticate(ctx context.Context, email, password, deviceID string) (domain.TokenPair, error) {
	if deviceID == "" {
		return domain.TokenPair{}, ErrDeviceRequired
	}

	user, err := s.Store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			obs.LoginsTotal.WithLabelValues("bad_credentials").Inc()
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		obs.LoginsTotal.WithLabelValues("bad_credentials").Inc()
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if user.Status != domain.UserStatusActive {
		obs.LoginsTotal.WithLabelValues("disabled").Inc()
		return domain.TokenPair{}, ErrAccountDisabled
	}

	sess, err := s.Registry.BeginSession(ctx, user.ID, deviceID, primaryRoleName(user))
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user, sess)
	if err != nil {
		return domain.TokenPair{}, err
	}

	obs.LoginsTotal.WithLabelValues("ok").Inc()
	slogx.FromContext(ctx).Info("login",
		slog.String("user_id", user.ID),
		slog.String("session_id", sess.ID),
	)
	return pair, nil
}

// Refresh rotates a refresh token into a new pair. The submitted token
// must be the exactly-one currently valid token for its session; an
// older token is a replay and revokes the session outright.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.Codec.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrSessionInvalid
		}
		return domain.TokenPair{}, err
	}
	if user.Status != domain.UserStatusActive {
		return domain.TokenPair{}, ErrAccountDisabled
	}

	// The replacement is minted first because rotation swaps fingerprints
	// atomically: old one in, new one out, in the same transaction.
	newRefresh, err := s.Codec.IssueRefresh(jwtx.RefreshTokenInput{
		UserID:    claims.Subject,
		SessionID: claims.SID,
		DeviceID:  claims.DeviceID,
	}, s.refreshTTL())
	if err != nil {
		return domain.TokenPair{}, err
	}

	sess, err := s.Registry.RotateRefresh(ctx, claims.SID, claims.Subject, claims.DeviceID,
		cryptox.FingerprintToken(refreshToken), cryptox.FingerprintToken(newRefresh))
	if err != nil {
		return domain.TokenPair{}, err
	}

	access, err := s.issueAccess(ctx, user, sess)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.accessTTL(),
		SessionID:    sess.ID,
	}, nil
}

// Logout ends the session the presented token is bound to.
func (s *TokenService) Logout(ctx context.Context, sessionID string) error {
	return s.Registry.EndSession(ctx, sessionID, ReasonLogout)
}

// issuePair issues both tokens for a freshly begun session and binds the
// refresh fingerprint to the session row. The row briefly carries the
// previous (or empty) hash between session creation and the bind; no
// refresh token can match it in that window.
func (s *TokenService) issuePair(ctx context.Context, user domain.User, sess domain.Session) (domain.TokenPair, error) {
	refresh, err := s.Codec.IssueRefresh(jwtx.RefreshTokenInput{
		UserID:    user.ID,
		SessionID: sess.ID,
		DeviceID:  sess.DeviceID,
	}, s.refreshTTL())
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.Registry.BindRefresh(ctx, sess.ID, cryptox.FingerprintToken(refresh)); err != nil {
		return domain.TokenPair{}, err
	}

	access, err := s.issueAccess(ctx, user, sess)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.accessTTL(),
		SessionID:    sess.ID,
	}, nil
}

func (s *TokenService) issueAccess(ctx context.Context, user domain.User, sess domain.Session) (string, error) {
	in := jwtx.AccessTokenInput{
		UserID:    user.ID,
		SessionID: sess.ID,
		DeviceID:  sess.DeviceID,
		RoleIDs:   user.RoleIDs(),
		RoleNames: user.RoleNames(),
	}

	// Scope hints ride along in the claims when profiles exist; the
	// scope resolver still re-checks the database on use.
	if profile, err := s.Store.Profiles().GetOperatorByUserID(ctx, user.ID); err == nil {
		in.WarehouseID = profile.WarehouseID
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	if client, err := s.Store.Profiles().GetClientByUserID(ctx, user.ID); err == nil {
		in.ClientID = client.ID
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	return s.Codec.IssueAccess(in, s.accessTTL())
}

// primaryRoleName picks the role snapshot recorded on the session row.
// ADMIN wins when present; otherwise the first role alphabetically-by-load
// order, or empty for a roleless account.
func primaryRoleName(user domain.User) string {
	if user.HasRole(domain.RoleAdmin) {
		return domain.RoleAdmin
	}
	if len(user.Roles) > 0 {
		return user.Roles[0].Name
	}
	return ""
}
