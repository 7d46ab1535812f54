package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"

	"github.com/hszk-dev/gocatalog/internal/auth"
	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

// avatarSize is the edge length of the square avatar crop.
const avatarSize = 256

// maxAvatarPixels bounds the decoded size of an uploaded avatar.
const maxAvatarPixels = 40_000_000

// CreateUserInput contains the input parameters for creating a user.
type CreateUserInput struct {
	Username string
	Password string
}

// UpdateUserInput carries optional changes; nil fields are left untouched.
type UpdateUserInput struct {
	Username *string
	Password *string
}

// UserService defines the interface for admin account operations.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error

	// UploadAvatar stores a square-cropped avatar and replaces the previous one.
	UploadAvatar(ctx context.Context, id int64, file io.Reader) (*model.User, error)

	// EnsureUser creates the user unless the username already exists.
	// Reports whether a user was created.
	EnsureUser(ctx context.Context, input CreateUserInput) (bool, error)
}

type userService struct {
	users repository.UserRepository
	files repository.FileStore
	now   func() time.Time
}

// NewUserService creates a new UserService instance.
func NewUserService(users repository.UserRepository, files repository.FileStore) UserService {
	return &userService{
		users: users,
		files: files,
		now:   time.Now,
	}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if err := model.ValidateUsername(input.Username); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := model.NewUser(input.Username, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, ErrInvalidArgument
	}
	return s.users.GetByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*model.User, error) {
	if id <= 0 {
		return nil, ErrInvalidArgument
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		if err := model.ValidateUsername(*input.Username); err != nil {
			return nil, err
		}
		user.Username = *input.Username
	}

	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidArgument
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.removeAvatar(user.ID, user.Avatar)
	return nil
}

func (s *userService) UploadAvatar(ctx context.Context, id int64, file io.Reader) (*model.User, error) {
	if id <= 0 {
		return nil, ErrInvalidArgument
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detected, body, err := sniff(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", ErrStorage, err)
	}

	mimeType, ok := matchMIME(detected, allowedImageTypes...)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an allowed image type", ErrUnsupportedFileType, detected.String())
	}

	// webp has no encoder in the image stack and is stored as uploaded.
	if mimeType != "image/webp" {
		body, err = cropAvatar(body, detected.Extension())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFileType, err)
		}
	}

	name := model.AvatarFilename(id, s.now(), detected.Extension())
	publicPath, err := s.files.Save(ctx, "", name, body)
	if err != nil {
		return nil, fmt.Errorf("%w: save avatar: %v", ErrStorage, err)
	}

	previous := user.Avatar
	user.SetAvatar(publicPath)

	if err := s.users.Update(ctx, user); err != nil {
		_ = s.files.Remove(publicPath)
		return nil, err
	}

	s.removeAvatar(id, previous)
	return user, nil
}

func (s *userService) EnsureUser(ctx context.Context, input CreateUserInput) (bool, error) {
	_, err := s.users.GetByUsername(ctx, input.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, err
	}

	if _, err := s.CreateUser(ctx, input); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *userService) removeAvatar(userID int64, publicPath string) {
	if publicPath == "" {
		return
	}
	if err := s.files.Remove(publicPath); err != nil {
		slog.Warn("failed to remove avatar",
			"user_id", userID,
			"avatar", publicPath,
			"error", err,
		)
	}
}

// cropAvatar center-crops and scales the image to avatarSize, re-encoding
// it in the format implied by ext.
func cropAvatar(r io.Reader, ext string) (io.Reader, error) {
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("unknown image format %s: %w", ext, err)
	}

	// Read the header first so oversized images are refused before allocation.
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxAvatarPixels {
		return nil, fmt.Errorf("image dimensions %dx%d exceed %d pixels", cfg.Width, cfg.Height, maxAvatarPixels)
	}

	img, err := imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return &buf, nil
}
