package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinichq/admin-api/internal/config"
)

func TestFetchLeadsPagination(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		if r.URL.Query().Get("offset") == "" {
			fmt.Fprint(w, `{
				"records": [
					{"id": "recA", "fields": {"name": "Alice", "email": "alice@x.com", "clinic_id": "c1"}},
					{"id": "recB", "fields": {"name": "Bob", "old_user_id": "old-b", "clinic_id": "c1"}}
				],
				"offset": "page2"
			}`)
			return
		}
		fmt.Fprint(w, `{
			"records": [
				{"id": "recC", "fields": {"name": "Carol", "email": "carol@x.com", "clinic_id": "c1"}}
			]
		}`)
	}))
	defer srv.Close()

	client := NewClient(config.AirtableConfig{
		BaseURL: srv.URL, APIKey: "key-123", BaseID: "appX", Table: "Leads",
	}, srv.Client())

	records, err := client.FetchLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 2, calls)

	// Record id backfills a missing legacy identity; explicit ones survive.
	assert.Equal(t, "recA", records[0].OldUserID)
	assert.Equal(t, "old-b", records[1].OldUserID)
	assert.Equal(t, "Carol", records[2].Name)
}

func TestFetchLeadsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"INVALID_API_KEY"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(config.AirtableConfig{BaseURL: srv.URL, BaseID: "appX", Table: "Leads"}, srv.Client())

	_, err := client.FetchLeads(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
