package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/bistro-cli/internal/model"
)

func surveyPage(records []model.SurveyRecord, pageNum, total int) []byte {
	b, _ := json.Marshal(map[string]any{
		"records": records,
		"page":    pageNum,
		"total":   total,
	})
	return b
}

func TestFetchPage_SendsAdminKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Admin-Key")
		w.Write(surveyPage(nil, 1, 0)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, AdminKey: "secret"})
	_, _, err := c.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
}

func TestFetchPage_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))
		w.Write(surveyPage([]model.SurveyRecord{ //nolint:errcheck
			{ID: "rec-1", MonthlyRevenue: 300_000, BusinessType: model.BusinessCafe},
		}, 1, 1))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, AdminKey: "k", PageSize: 50})
	records, total, err := c.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", records[0].ID)
	assert.Equal(t, model.BusinessCafe, records[0].BusinessType)
}

func TestFetchAll_Paginates(t *testing.T) {
	// 5 records, page size 2 -> pages of 2, 2, 1.
	all := make([]model.SurveyRecord, 5)
	for i := range all {
		all[i] = model.SurveyRecord{ID: fmt.Sprintf("rec-%d", i)}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
		start := (pageNum - 1) * 2
		end := start + 2
		if end > len(all) {
			end = len(all)
		}
		w.Write(surveyPage(all[start:end], pageNum, len(all))) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, AdminKey: "k", PageSize: 2, RatePerSec: 1000})
	records, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "rec-0", records[0].ID)
	assert.Equal(t, "rec-4", records[4].ID)
}

func TestFetchPage_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(surveyPage([]model.SurveyRecord{{ID: "rec-1"}}, 1, 1)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, AdminKey: "k", MaxRetries: 3, RatePerSec: 1000})
	records, _, err := c.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchPage_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, AdminKey: "k", MaxRetries: 2, RatePerSec: 1000})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _, err := c.FetchPage(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
}

func TestFetchPage_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, AdminKey: "wrong"})
	_, _, err := c.FetchPage(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}
