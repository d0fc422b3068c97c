package storage

import (
	"context"

	"quill-server-go/internal/domain/auth/model"
)

// PrincipalSource resolves verified token identities to full
// principals for the request gate. Read-only.
type PrincipalSource struct {
	users UserRepository
}

func NewPrincipalSource(users UserRepository) *PrincipalSource {
	return &PrincipalSource{users: users}
}

func (s *PrincipalSource) PrincipalByID(ctx context.Context, id uint) (*model.Principal, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &model.Principal{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Role:    user.Role,
		Enabled: user.Enabled,
	}, nil
}
