package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"echolearn-client/internal/credstore"
	"echolearn-client/internal/dto"
	"echolearn-client/internal/entity"
	"echolearn-client/internal/pkg/logger"
	"echolearn-client/internal/pkg/validation"
	"echolearn-client/internal/transport"

	"github.com/golang-jwt/jwt/v5"
)

type AuthState string

const (
	AuthStateUninitialized AuthState = "uninitialized"
	AuthStateLoading       AuthState = "loading"
	AuthStateAuthenticated AuthState = "authenticated"
	AuthStateAnonymous     AuthState = "anonymous"
)

type IAuthService interface {
	Initialize(ctx context.Context)
	Login(ctx context.Context, username, password string) error
	Signup(ctx context.Context, username, email, password string) error
	Logout()
	RefreshAccessToken(ctx context.Context) error
	CurrentUser() *entity.User
	SetUser(user *entity.User)
	IsAuthenticated() bool
	State() AuthState
	HandleSessionExpired()
}

type authService struct {
	creds         *credstore.Store
	api           *transport.Client
	notifications INotificationService
	nav           Navigator
	logger        logger.ILogger

	mu    sync.Mutex
	user  *entity.User
	state AuthState
}

func NewAuthService(creds *credstore.Store, api *transport.Client, notifications INotificationService, nav Navigator, log logger.ILogger) IAuthService {
	return &authService{
		creds:         creds,
		api:           api,
		notifications: notifications,
		nav:           nav,
		logger:        log,
		state:         AuthStateUninitialized,
	}
}

// Initialize restores the persisted identity, if any. A readable user record
// means authenticated; a corrupt one tears the credential keys down. A stored
// access token that is already expired is exchanged up front rather than on
// the first doomed request.
func (s *authService) Initialize(ctx context.Context) {
	s.setState(AuthStateLoading)

	var user entity.User
	found, err := s.creds.GetJSON(credstore.KeyUser, &user)
	if !found {
		// Tokens without a user record are an anomaly; drop them too.
		if clearErr := s.creds.ClearCredentials(); clearErr != nil {
			s.logger.Error("AuthService", "Failed to clear credentials", map[string]interface{}{"error": clearErr})
		}
		s.setState(AuthStateAnonymous)
		return
	}
	if err != nil {
		s.logger.Warn("AuthService", "Persisted user unreadable, clearing credentials", map[string]interface{}{"error": err.Error()})
		if clearErr := s.creds.ClearCredentials(); clearErr != nil {
			s.logger.Error("AuthService", "Failed to clear credentials", map[string]interface{}{"error": clearErr})
		}
		s.setState(AuthStateAnonymous)
		return
	}

	if user.Role == "" {
		user.Role = entity.UserRoleUser
	}

	if token, ok := s.creds.Get(credstore.KeyAccessToken); ok && tokenExpired(token) {
		s.logger.Info("AuthService", "Stored access token expired, refreshing", nil)
		if refreshErr := s.api.RefreshTokens(ctx); refreshErr != nil {
			s.logger.Warn("AuthService", "Startup refresh failed", map[string]interface{}{"error": refreshErr.Error()})
			if clearErr := s.creds.ClearCredentials(); clearErr != nil {
				s.logger.Error("AuthService", "Failed to clear credentials", map[string]interface{}{"error": clearErr})
			}
			s.setState(AuthStateAnonymous)
			return
		}
	}

	s.mu.Lock()
	s.user = &user
	s.state = AuthStateAuthenticated
	s.mu.Unlock()
}

func (s *authService) Login(ctx context.Context, username, password string) error {
	req := dto.LoginRequest{Username: username, Password: password}
	if err := validation.Struct(req); err != nil {
		return err
	}

	s.setState(AuthStateLoading)

	var res dto.LoginResponse
	if err := s.api.DoJSON(ctx, http.MethodPost, "/login", req, &res); err != nil {
		s.notifications.Add(entity.NotificationError, loginFailureMessage(err))
		s.setState(AuthStateAnonymous)
		return fmt.Errorf("login: %w", err)
	}

	user := res.User
	if user.Role == "" {
		user.Role = entity.UserRoleUser
	}

	// Storage first, then state: there must be no window where the state
	// says authenticated but the store lacks a token.
	if err := s.creds.SetJSON(credstore.KeyUser, user); err != nil {
		s.setState(AuthStateAnonymous)
		return fmt.Errorf("persist user: %w", err)
	}
	if err := s.creds.Set(credstore.KeyAccessToken, res.AccessToken); err != nil {
		s.setState(AuthStateAnonymous)
		return fmt.Errorf("persist access token: %w", err)
	}
	if err := s.creds.Set(credstore.KeyRefreshToken, res.RefreshToken); err != nil {
		s.setState(AuthStateAnonymous)
		return fmt.Errorf("persist refresh token: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.state = AuthStateAuthenticated
	s.mu.Unlock()

	s.navigateByRole(&user)
	return nil
}

func (s *authService) Signup(ctx context.Context, username, email, password string) error {
	// The confirmation field is sent alongside the password; the client has
	// no separate confirmation input beyond the view layer's.
	req := dto.RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	prev := s.State()
	s.setState(AuthStateLoading)

	var res dto.RegisterResponse
	if err := s.api.DoJSON(ctx, http.MethodPost, "/register", req, &res); err != nil {
		s.notifications.Add(entity.NotificationError, signupFailureMessage(err))
		s.setState(prev)
		return fmt.Errorf("signup: %w", err)
	}

	user := res.User
	if user.Role == "" {
		user.Role = entity.UserRoleUser
	}

	// Registration returns no tokens per the collaborator contract; only the
	// user record is persisted at this step.
	if err := s.creds.SetJSON(credstore.KeyUser, user); err != nil {
		s.setState(prev)
		return fmt.Errorf("persist user: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.state = AuthStateAuthenticated
	s.mu.Unlock()

	s.navigateByRole(&user)
	return nil
}

// Logout clears the three credential keys and resets in-memory identity.
// Missing keys are fine; logout never fails.
func (s *authService) Logout() {
	if err := s.creds.ClearCredentials(); err != nil {
		s.logger.Error("AuthService", "Failed to clear credentials on logout", map[string]interface{}{"error": err})
	}

	s.mu.Lock()
	s.user = nil
	s.state = AuthStateAnonymous
	s.mu.Unlock()

	s.nav.NavigateTo(RouteAuth)
}

// RefreshAccessToken performs the same exchange the 401 interceptor does.
// Failure is fatal to the session.
func (s *authService) RefreshAccessToken(ctx context.Context) error {
	if err := s.api.RefreshTokens(ctx); err != nil {
		s.logger.Warn("AuthService", "Manual token refresh failed", map[string]interface{}{"error": err.Error()})
		s.Logout()
		return fmt.Errorf("refresh access token: %w", err)
	}
	return nil
}

func (s *authService) CurrentUser() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// SetUser replaces the in-memory identity after a profile edit. The caller
// is responsible for having persisted the record already.
func (s *authService) SetUser(user *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

func (s *authService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *authService) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleSessionExpired is invoked by the transport after a failed refresh
// has already torn down the stored credentials.
func (s *authService) HandleSessionExpired() {
	s.mu.Lock()
	s.user = nil
	s.state = AuthStateAnonymous
	s.mu.Unlock()

	s.notifications.Add(entity.NotificationWarning, "Your session has expired. Please sign in again.")
	s.nav.NavigateTo(RouteAuth)
}

func (s *authService) setState(state AuthState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *authService) navigateByRole(user *entity.User) {
	if user.IsAdmin() {
		s.nav.NavigateTo(RouteAdmin)
		return
	}
	s.nav.NavigateTo(RouteProfile)
}

// tokenExpired inspects the exp claim of a JWT without verifying its
// signature; verification is the backend's job, the client only needs the
// deadline. Unparseable tokens are treated as live and left to the 401 path.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func loginFailureMessage(err error) string {
	if apiErr, ok := err.(*transport.APIError); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "Failed to login. Please try again."
}

func signupFailureMessage(err error) string {
	if apiErr, ok := err.(*transport.APIError); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "Failed to create account. Please try again."
}
