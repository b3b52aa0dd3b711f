package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

// Doer is the JSON call surface of the backend client.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

type Service struct {
	api Doer
}

func NewService(api Doer) *Service {
	return &Service{api: api}
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.list(ctx, "/categories", &out); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (s *Service) CategoryTree(ctx context.Context) ([]*CategoryNode, error) {
	flat, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(flat), nil
}

// Banners returns banners ordered by position.
func (s *Service) Banners(ctx context.Context) ([]Banner, error) {
	var out []Banner
	if err := s.list(ctx, "/banners", &out); err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// MoveBanner reorders banners on the backend and returns the new order.
func (s *Service) MoveBanner(ctx context.Context, from, to int) ([]Banner, error) {
	banners, err := s.Banners(ctx)
	if err != nil {
		return nil, err
	}
	reordered, err := ReorderBanners(banners, from, to)
	if err != nil {
		return nil, err
	}
	body := map[string][]int64{"ids": BannerIDs(reordered)}
	if err := s.api.Do(ctx, http.MethodPut, "/banners/order", body, nil); err != nil {
		return nil, fmt.Errorf("save banner order: %w", err)
	}
	return reordered, nil
}

// list accepts either a bare JSON array or one wrapped as {"data": [...]}.
func (s *Service) list(ctx context.Context, path string, out any) error {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	if len(raw) > 0 && raw[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return err
		}
		raw = wrapped.Data
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, out)
}
