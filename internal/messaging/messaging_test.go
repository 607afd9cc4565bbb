package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayritours/booking-assistant/pkg/logging"
)

func TestDialog360SenderPostsPayload(t *testing.T) {
	var gotKey string
	var gotPayload textPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/messages", r.URL.Path)
		gotKey = r.Header.Get("D360-API-KEY")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewDialog360Sender("secret", srv.URL, logging.Default())
	err := s.SendText(context.Background(), "+972501234567", "שלום")
	require.NoError(t, err)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "972501234567", gotPayload.To)
	assert.Equal(t, "individual", gotPayload.RecipientType)
	assert.Equal(t, "text", gotPayload.Type)
	assert.Equal(t, "שלום", gotPayload.Text.Body)
}

func TestDialog360SenderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewDialog360Sender("secret", srv.URL, logging.Default())
	err := s.SendText(context.Background(), "972501234567", "hi")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDialog360SenderGivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewDialog360Sender("secret", srv.URL, logging.Default())
	err := s.SendText(context.Background(), "972501234567", "hi")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDialog360SenderValidation(t *testing.T) {
	s := NewDialog360Sender("secret", "http://127.0.0.1:0", logging.Default())

	assert.Error(t, s.SendText(context.Background(), "", "hi"))
	assert.Error(t, s.SendText(context.Background(), "972501234567", "  "))

	missingKey := NewDialog360Sender("", "http://127.0.0.1:0", logging.Default())
	assert.Error(t, missingKey.SendText(context.Background(), "972501234567", "hi"))
}

func TestCloudAPISenderPostsPayload(t *testing.T) {
	var gotAuth string
	var gotPath string
	var gotPayload cloudAPIPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewCloudAPISender("token", "12345", srv.URL, logging.Default())
	err := s.SendText(context.Background(), "972501234567", "Thanks! Noted")
	require.NoError(t, err)

	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "/12345/messages", gotPath)
	assert.Equal(t, "whatsapp", gotPayload.MessagingProduct)
	assert.Equal(t, "972501234567", gotPayload.To)
}

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) SendText(context.Context, string, string) error {
	s.calls++
	return s.err
}

func TestFailoverSenderFallsBack(t *testing.T) {
	primary := &stubSender{err: errors.New("boom")}
	secondary := &stubSender{}

	f := NewFailoverSender(primary, ProviderDialog360, secondary, ProviderCloudAPI, logging.Default())
	err := f.SendText(context.Background(), "972501234567", "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFailoverSenderPrimarySuccessSkipsSecondary(t *testing.T) {
	primary := &stubSender{}
	secondary := &stubSender{}

	f := NewFailoverSender(primary, ProviderDialog360, secondary, ProviderCloudAPI, logging.Default())
	require.NoError(t, f.SendText(context.Background(), "972501234567", "hi"))
	assert.Equal(t, 0, secondary.calls)
}

func TestBuildSenderSelection(t *testing.T) {
	logger := logging.Default()

	sender, provider, reason := BuildSender(ProviderSelectionConfig{D360APIKey: "k"}, logger)
	require.NotNil(t, sender)
	assert.Equal(t, ProviderDialog360, provider)
	assert.Empty(t, reason)

	sender, provider, reason = BuildSender(ProviderSelectionConfig{
		D360APIKey:       "k",
		CloudToken:       "t",
		CloudPhoneNumber: "12345",
	}, logger)
	require.NotNil(t, sender)
	assert.IsType(t, &FailoverSender{}, sender)
	assert.Equal(t, ProviderDialog360+"+"+ProviderCloudAPI, provider)
	assert.Empty(t, reason)

	sender, _, reason = BuildSender(ProviderSelectionConfig{Preference: ProviderCloudAPI, D360APIKey: "k"}, logger)
	assert.Nil(t, sender)
	assert.NotEmpty(t, reason)

	sender, _, reason = BuildSender(ProviderSelectionConfig{}, logger)
	assert.Nil(t, sender)
	assert.Contains(t, reason, "D360_API_KEY missing")
}
