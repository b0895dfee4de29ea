package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	summarydomain "mailbrief-backend/internal/summary/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDigests() []*summarydomain.EmailDigest {
	return []*summarydomain.EmailDigest{
		{Subject: "Invoice due", From: "billing@vendor.com", Snippet: "Your invoice #42 is due Friday"},
		{Subject: "Standup moved", From: "Bob <bob@team.com>", Snippet: "Standup is at 10am tomorrow"},
	}
}

func TestSummarizeDigests(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Two emails: an invoice and a standup change."}}]}`))
	}))
	defer srv.Close()

	s := NewService("test-key", "test-model")
	s.BaseURL = srv.URL

	text, err := s.SummarizeDigests(context.Background(), testDigests())
	require.NoError(t, err)
	assert.Equal(t, "Two emails: an invoice and a standup change.", text)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, maxSummaryTokens, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "1. Invoice due (billing@vendor.com)")
	assert.Contains(t, gotReq.Messages[0].Content, "2. Standup moved (Bob <bob@team.com>)")
}

func TestSummarizeDigestsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewService("test-key", "test-model")
	s.BaseURL = srv.URL

	_, err := s.SummarizeDigests(context.Background(), testDigests())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestSummarizeDigestsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	s := NewService("test-key", "test-model")
	s.BaseURL = srv.URL

	_, err := s.SummarizeDigests(context.Background(), testDigests())
	assert.Error(t, err)
}

func TestSummarizeDigestsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	s := NewService("test-key", "test-model")
	s.BaseURL = srv.URL

	_, err := s.SummarizeDigests(context.Background(), testDigests())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no summary returned")
}
