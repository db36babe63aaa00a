package service

import (
	"context"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/hooks"
)

// ListUsers returns one page of users matching search (name or email,
// matched by the API).
func (s *Service) ListUsers(ctx context.Context, page int, search string) (*Page[*motoadmin.User], error) {
	params := motoadmin.ListParams{
		Page:   ValidatePage(page),
		Limit:  s.config.PageSize,
		Search: ValidateSearch(search),
	}
	result, err := s.api.ListUsers(ctx, params)
	if err != nil {
		return nil, err
	}
	if result.TotalPages > 0 && params.Page > result.TotalPages {
		params.Page = result.TotalPages
		if result, err = s.api.ListUsers(ctx, params); err != nil {
			return nil, err
		}
	}
	return serverPage(result.Users, params, result.TotalPages), nil
}

// VerifyUser marks a user as verified.
func (s *Service) VerifyUser(ctx context.Context, id string) (*motoadmin.User, error) {
	u, err := s.api.VerifyUser(ctx, id)
	label := ""
	if u != nil {
		label = u.Email
	}
	s.mutated(ctx, hooks.ActionVerifyUser, subject(label, id), err)
	return u, err
}
