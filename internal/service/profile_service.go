package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

// ProfileUpdate carries the editable account fields; nil means unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// ProfileService manages the signed-in user's account and saved addresses.
type ProfileService struct {
	users     repository.UserRepository
	addresses repository.AddressRepository
	logger    *zap.Logger
}

func NewProfileService(users repository.UserRepository, addresses repository.AddressRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, addresses: addresses, logger: logger}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, entity.Internal("failed to fetch profile", err)
	}
	return user, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, upd ProfileUpdate) (*entity.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	name, phone := user.Name, user.Phone
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, entity.InvalidArgument("Name cannot be empty")
		}
	}
	if upd.Phone != nil {
		phone = strings.TrimSpace(*upd.Phone)
	}

	user, err = s.users.UpdateProfile(ctx, userID, name, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, entity.Internal("failed to update profile", err)
	}
	return user, nil
}

func (s *ProfileService) UpdateNotifications(ctx context.Context, userID string, prefs entity.NotificationPreferences) error {
	err := s.users.UpdateNotifications(ctx, userID, prefs)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.ErrUserNotFound
	}
	if err != nil {
		return entity.Internal("failed to update notification preferences", err)
	}
	return nil
}

// Delete removes the account with its carts, addresses and wishlist.
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.ErrUserNotFound
	}
	if err != nil {
		return entity.Internal("failed to delete account", err)
	}
	s.logger.Info("Account deleted", zap.String("user_id", userID))
	return nil
}

func (s *ProfileService) ListAddresses(ctx context.Context, userID string) ([]entity.Address, error) {
	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, entity.Internal("failed to fetch addresses", err)
	}
	return addresses, nil
}

// CreateAddress saves a new address, defaulting the type to SHIPPING and the
// country to India.
func (s *ProfileService) CreateAddress(ctx context.Context, userID string, a entity.Address) (*entity.Address, error) {
	a.ID = ""
	a.UserID = userID
	if a.Type == "" {
		a.Type = entity.AddressShipping
	}
	if strings.TrimSpace(a.Country) == "" {
		a.Country = entity.DefaultCountry
	}
	if err := validateAddress(a); err != nil {
		return nil, err
	}
	if err := s.addresses.Save(ctx, &a); err != nil {
		return nil, entity.Internal("failed to save address", err)
	}
	return &a, nil
}

func (s *ProfileService) UpdateAddress(ctx context.Context, userID, addressID string, patch entity.AddressPatch) (*entity.Address, error) {
	a, err := s.addresses.FindForUser(ctx, userID, addressID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrAddressNotFound
	}
	if err != nil {
		return nil, entity.Internal("failed to fetch address", err)
	}

	patch.Apply(a)
	if err := validateAddress(*a); err != nil {
		return nil, err
	}
	err = s.addresses.Save(ctx, a)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrAddressNotFound
	}
	if err != nil {
		return nil, entity.Internal("failed to save address", err)
	}
	return a, nil
}

func (s *ProfileService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	err := s.addresses.Delete(ctx, userID, addressID)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.ErrAddressNotFound
	}
	if err != nil {
		return entity.Internal("failed to delete address", err)
	}
	return nil
}

func validateAddress(a entity.Address) error {
	if a.Type != entity.AddressShipping && a.Type != entity.AddressBilling {
		return entity.InvalidArgument("Address type must be SHIPPING or BILLING")
	}
	required := []string{a.FullName, a.Phone, a.AddressLine1, a.City, a.State, a.PostalCode}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return entity.InvalidArgument("Missing required address fields")
		}
	}
	return nil
}
