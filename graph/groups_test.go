package graph

import (
	"context"
	"net/http"
	"testing"

	"github.com/ringshift/ringshift/ring"
	"github.com/stretchr/testify/require"
)

func TestGroupByName(t *testing.T) {
	t.Run("resolves a single match", func(t *testing.T) {
		var gotFilter string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/groups", r.URL.Path)
			gotFilter = r.URL.Query().Get("$filter")
			writeJSON(t, w, map[string]any{
				"value": []map[string]string{{"id": "g-test", "displayName": "Intune-Test-Users"}},
			})
		}))

		group, err := c.GroupByName(context.Background(), "Intune-Test-Users")
		require.NoError(t, err)
		require.Equal(t, "g-test", group.ID)
		require.Equal(t, "Intune-Test-Users", group.DisplayName)
		require.Equal(t, `displayName eq 'Intune-Test-Users'`, gotFilter)
	})

	t.Run("escapes single quotes in the filter", func(t *testing.T) {
		var gotFilter string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotFilter = r.URL.Query().Get("$filter")
			writeJSON(t, w, map[string]any{
				"value": []map[string]string{{"id": "g1", "displayName": "O'Brien's Ring"}},
			})
		}))

		_, err := c.GroupByName(context.Background(), "O'Brien's Ring")
		require.NoError(t, err)
		require.Equal(t, `displayName eq 'O''Brien''s Ring'`, gotFilter)
	})

	t.Run("no match is a target group not found error", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"value": []map[string]string{}})
		}))

		_, err := c.GroupByName(context.Background(), "Missing-Ring")
		require.Error(t, err)
		require.True(t, ring.IsNotFound(err))
		var tgnf *ring.TargetGroupNotFoundError
		require.ErrorAs(t, err, &tgnf)
		require.Equal(t, "Missing-Ring", tgnf.GroupName)
	})

	t.Run("multiple matches use the first", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{
				"value": []map[string]string{
					{"id": "g-first", "displayName": "Intune-Prod-Users"},
					{"id": "g-second", "displayName": "Intune-Prod-Users"},
				},
			})
		}))

		group, err := c.GroupByName(context.Background(), "Intune-Prod-Users")
		require.NoError(t, err)
		require.Equal(t, "g-first", group.ID)
	})
}

func TestGroupByID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups/g-dev", r.URL.Path)
		writeJSON(t, w, map[string]string{"id": "g-dev", "displayName": "Intune-Dev-Users"})
	}))

	group, err := c.GroupByID(context.Background(), "g-dev")
	require.NoError(t, err)
	require.Equal(t, &ring.Group{ID: "g-dev", DisplayName: "Intune-Dev-Users"}, group)
}
