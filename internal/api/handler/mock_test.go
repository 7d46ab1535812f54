package handler

import (
	"context"
	"io"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

type mockItemService struct {
	createItemFn func(ctx context.Context, input usecase.CreateItemInput) (*model.Item, error)
	getItemFn    func(ctx context.Context, id int64) (*model.Item, error)
	listItemsFn  func(ctx context.Context) ([]*model.Item, error)
	updateItemFn func(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error)
	deleteItemFn func(ctx context.Context, id int64) error
}

func (m *mockItemService) CreateItem(ctx context.Context, input usecase.CreateItemInput) (*model.Item, error) {
	if m.createItemFn != nil {
		return m.createItemFn(ctx, input)
	}
	return nil, nil
}

func (m *mockItemService) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, id)
	}
	return nil, nil
}

func (m *mockItemService) ListItems(ctx context.Context) ([]*model.Item, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx)
	}
	return nil, nil
}

func (m *mockItemService) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	if m.updateItemFn != nil {
		return m.updateItemFn(ctx, id, patch)
	}
	return nil, nil
}

func (m *mockItemService) DeleteItem(ctx context.Context, id int64) error {
	if m.deleteItemFn != nil {
		return m.deleteItemFn(ctx, id)
	}
	return nil
}

type mockMediaService struct {
	uploadMediaFn func(ctx context.Context, input usecase.UploadMediaInput) (*model.ItemMedia, error)
	deleteMediaFn func(ctx context.Context, itemID, mediaID int64) error
}

func (m *mockMediaService) UploadMedia(ctx context.Context, input usecase.UploadMediaInput) (*model.ItemMedia, error) {
	if m.uploadMediaFn != nil {
		return m.uploadMediaFn(ctx, input)
	}
	return nil, nil
}

func (m *mockMediaService) DeleteMedia(ctx context.Context, itemID, mediaID int64) error {
	if m.deleteMediaFn != nil {
		return m.deleteMediaFn(ctx, itemID, mediaID)
	}
	return nil
}

type mockThumbnailService struct {
	getThumbnailFn func(ctx context.Context, itemID, mediaID int64) (string, error)
}

func (m *mockThumbnailService) GetThumbnail(ctx context.Context, itemID, mediaID int64) (string, error) {
	if m.getThumbnailFn != nil {
		return m.getThumbnailFn(ctx, itemID, mediaID)
	}
	return "", nil
}

func (m *mockThumbnailService) Warm(ctx context.Context, itemID, mediaID int64) error {
	return nil
}

func (m *mockThumbnailService) Evict(ctx context.Context, mediaID int64) error {
	return nil
}

func (m *mockThumbnailService) PruneOrphans(ctx context.Context) (int, error) {
	return 0, nil
}

type mockUserService struct {
	createUserFn   func(ctx context.Context, input usecase.CreateUserInput) (*model.User, error)
	getUserFn      func(ctx context.Context, id int64) (*model.User, error)
	listUsersFn    func(ctx context.Context) ([]*model.User, error)
	updateUserFn   func(ctx context.Context, id int64, input usecase.UpdateUserInput) (*model.User, error)
	deleteUserFn   func(ctx context.Context, id int64) error
	uploadAvatarFn func(ctx context.Context, id int64, file io.Reader) (*model.User, error)
}

func (m *mockUserService) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*model.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, input)
	}
	return nil, nil
}

func (m *mockUserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockUserService) UpdateUser(ctx context.Context, id int64, input usecase.UpdateUserInput) (*model.User, error) {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, id, input)
	}
	return nil, nil
}

func (m *mockUserService) DeleteUser(ctx context.Context, id int64) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, id)
	}
	return nil
}

func (m *mockUserService) UploadAvatar(ctx context.Context, id int64, file io.Reader) (*model.User, error) {
	if m.uploadAvatarFn != nil {
		return m.uploadAvatarFn(ctx, id, file)
	}
	return nil, nil
}

func (m *mockUserService) EnsureUser(ctx context.Context, input usecase.CreateUserInput) (bool, error) {
	return false, nil
}

type mockAuthService struct {
	loginFn        func(ctx context.Context, username, password, clientIP string) (*usecase.LoginOutput, error)
	logoutFn       func(ctx context.Context, token string) error
	authenticateFn func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, username, password, clientIP string) (*usecase.LoginOutput, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password, clientIP)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, token)
	}
	return nil, usecase.ErrUnauthorized
}
