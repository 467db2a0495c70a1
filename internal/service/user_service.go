package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"echolearn-client/internal/credstore"
	"echolearn-client/internal/dto"
	"echolearn-client/internal/entity"
	"echolearn-client/internal/pkg/logger"
	"echolearn-client/internal/pkg/validation"
	"echolearn-client/internal/transport"
)

type IUserService interface {
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) error
}

// userService owns the profile-edit flow: push the change to the backend,
// persist the merged record, then swap the in-memory identity.
type userService struct {
	api           *transport.Client
	creds         *credstore.Store
	auth          IAuthService
	notifications INotificationService
	logger        logger.ILogger
}

func NewUserService(api *transport.Client, creds *credstore.Store, auth IAuthService, notifications INotificationService, log logger.ILogger) IUserService {
	return &userService{
		api:           api,
		creds:         creds,
		auth:          auth,
		notifications: notifications,
		logger:        log,
	}
}

func (s *userService) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	current := s.auth.CurrentUser()
	if current == nil {
		return errors.New("not signed in")
	}

	if err := s.api.DoJSON(ctx, http.MethodPut, "/update_profile", req, nil); err != nil {
		s.logger.Error("UserService", "Profile update failed", map[string]interface{}{"error": err.Error()})
		s.notifications.Add(entity.NotificationError, "Failed to update profile")
		return fmt.Errorf("update profile: %w", err)
	}

	updated := *current
	updated.Username = req.Username
	updated.Mobile = req.Mobile
	updated.Location = req.Location
	updated.Github = req.Github
	updated.Linkedin = req.Linkedin
	updated.Portfolio = req.Portfolio

	// Storage before state, same ordering rule as the auth flows.
	if err := s.creds.SetJSON(credstore.KeyUser, updated); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	s.auth.SetUser(&updated)

	s.notifications.Add(entity.NotificationSuccess, "Profile updated successfully!")
	return nil
}
