package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buytown/admin-console/internal/backend"
	"github.com/buytown/admin-console/internal/catalog"
)

func id(v int64) *int64 { return &v }

func names(nodes []*catalog.CategoryNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestBuildCategoryTree(t *testing.T) {
	// Arrange
	flat := []catalog.Category{
		{ID: 3, Name: "Phones", ParentID: id(1)},
		{ID: 1, Name: "Electronics"},
		{ID: 2, Name: "Clothing", ParentID: id(0)},
		{ID: 4, Name: "Laptops", ParentID: id(1)},
		{ID: 5, Name: "Android", ParentID: id(3)},
		{ID: 6, Name: "Orphan", ParentID: id(99)},
	}

	// Act
	roots := catalog.BuildCategoryTree(flat)

	// Assert
	assert.Equal(t, []string{"Electronics", "Clothing", "Orphan"}, names(roots))
	assert.Equal(t, []string{"Phones", "Laptops"}, names(roots[0].Children))
	assert.Equal(t, []string{"Android"}, names(roots[0].Children[0].Children))
	assert.Empty(t, roots[1].Children)

	var visited []string
	catalog.Walk(roots, func(n *catalog.CategoryNode, depth int) {
		if depth == 2 {
			visited = append(visited, n.Name)
		}
	})
	assert.Equal(t, []string{"Android"}, visited)
}

func TestBuildCategoryTree_CyclesAndDuplicates(t *testing.T) {
	flat := []catalog.Category{
		{ID: 1, Name: "A", ParentID: id(2)},
		{ID: 2, Name: "B", ParentID: id(1)},
		{ID: 3, Name: "C", ParentID: id(3)},
		{ID: 3, Name: "C duplicate"},
	}

	roots := catalog.BuildCategoryTree(flat)

	assert.Equal(t, []string{"C", "A"}, names(roots))
	assert.Equal(t, []string{"B"}, names(roots[1].Children))
	assert.Empty(t, roots[1].Children[0].Children)
}

func TestBuildCategoryTree_Empty(t *testing.T) {
	roots := catalog.BuildCategoryTree(nil)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)

	b, err := json.Marshal(roots)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestReorderBanners(t *testing.T) {
	banners := []catalog.Banner{
		{ID: 10, Title: "Spring sale", Position: 1},
		{ID: 11, Title: "New arrivals", Position: 2},
		{ID: 12, Title: "Free shipping", Position: 3},
		{ID: 13, Title: "Clearance", Position: 4},
	}

	down, err := catalog.ReorderBanners(banners, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12, 10, 13}, catalog.BannerIDs(down))
	for i, b := range down {
		assert.Equal(t, i+1, b.Position)
	}

	up, err := catalog.ReorderBanners(banners, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{13, 10, 11, 12}, catalog.BannerIDs(up))

	same, err := catalog.ReorderBanners(banners, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12, 13}, catalog.BannerIDs(same))

	// input is untouched
	assert.Equal(t, []int64{10, 11, 12, 13}, catalog.BannerIDs(banners))
	assert.Equal(t, 1, banners[0].Position)
}

func TestReorderBanners_OutOfRange(t *testing.T) {
	banners := []catalog.Banner{{ID: 1}, {ID: 2}}
	for _, mv := range [][2]int{{-1, 0}, {0, 2}, {2, 0}} {
		_, err := catalog.ReorderBanners(banners, mv[0], mv[1])
		assert.True(t, errors.Is(err, catalog.ErrPositionOutOfRange))
	}
}

func TestService_AgainstBackend(t *testing.T) {
	var saved []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/categories":
			w.Write([]byte(`{"data":[{"id":1,"name":"Root","parent_id":null},{"id":2,"name":"Child","parent_id":1}]}`))
		case r.Method == http.MethodGet && r.URL.Path == "/banners":
			w.Write([]byte(`[{"id":7,"title":"b","position":2},{"id":6,"title":"a","position":1}]`))
		case r.Method == http.MethodPut && r.URL.Path == "/banners/order":
			var body struct {
				IDs []int64 `json:"ids"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			saved = body.IDs
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	svc := catalog.NewService(backend.NewClient(srv.URL, nil))
	ctx := context.Background()

	tree, err := svc.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, []string{"Child"}, names(tree[0].Children))

	banners, err := svc.Banners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 7}, catalog.BannerIDs(banners))

	moved, err := svc.MoveBanner(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 6}, catalog.BannerIDs(moved))
	assert.Equal(t, []int64{7, 6}, saved)
}
