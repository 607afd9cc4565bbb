package extract

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayritours/booking-assistant/internal/booking"
)

type fakeLLMClient struct {
	text string
	err  error

	lastReq LLMRequest
}

func (f *fakeLLMClient) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return LLMResponse{}, f.err
	}
	return LLMResponse{Text: f.text}, nil
}

func TestLLMExtractorParsesFencedJSON(t *testing.T) {
	client := &fakeLLMClient{text: "```json\n{\"date\":\"03/08/2025\",\"passengers\":2}\n```"}
	e := NewLLMExtractor(client, "test-model")

	fields, err := e.Extract(context.Background(), "ride on 03/08/2025 for two", booking.LanguageEnglish)
	require.NoError(t, err)

	assert.Equal(t, "03/08/2025", fields.Date)
	assert.Equal(t, "2", fields.Passengers)
	assert.Empty(t, fields.Time)
}

func TestLLMExtractorHebrewPrompt(t *testing.T) {
	client := &fakeLLMClient{text: "{}"}
	e := NewLLMExtractor(client, "test-model")

	_, err := e.Extract(context.Background(), "איסוף מהמלון", booking.LanguageHebrew)
	require.NoError(t, err)

	require.Len(t, client.lastReq.System, 1)
	assert.Equal(t, extractSystemPromptHE, client.lastReq.System[0])
	require.Len(t, client.lastReq.Messages, 1)
	assert.Contains(t, client.lastReq.Messages[0].Content, "איסוף מהמלון")
}

func TestLLMExtractorDropsNullAndUnknownKeys(t *testing.T) {
	client := &fakeLLMClient{text: `{"time":"17:30","pickup":null,"driver":"moshe"}`}
	e := NewLLMExtractor(client, "test-model")

	fields, err := e.Extract(context.Background(), "at 17:30", booking.LanguageEnglish)
	require.NoError(t, err)

	assert.Equal(t, "17:30", fields.Time)
	assert.Empty(t, fields.Pickup)
}

func TestLLMExtractorTransportError(t *testing.T) {
	client := &fakeLLMClient{err: errors.New("throttled")}
	e := NewLLMExtractor(client, "test-model")

	_, err := e.Extract(context.Background(), "ride tomorrow", booking.LanguageEnglish)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm completion failed")
}

func TestLLMExtractorUnparseableReply(t *testing.T) {
	client := &fakeLLMClient{text: "sorry, I cannot help with that"}
	e := NewLLMExtractor(client, "test-model")

	_, err := e.Extract(context.Background(), "ride tomorrow", booking.LanguageEnglish)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable")
}

func TestLLMExtractorEmptyMessage(t *testing.T) {
	client := &fakeLLMClient{err: errors.New("should not be called")}
	e := NewLLMExtractor(client, "test-model")

	fields, err := e.Extract(context.Background(), "   ", booking.LanguageEnglish)
	require.NoError(t, err)
	assert.True(t, fields.Empty())
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string, string) (booking.Fields, error) {
	return booking.Fields{}, errors.New("model unavailable")
}

func TestFallbackExtractorUsesFallbackOnFailure(t *testing.T) {
	e := NewFallbackExtractor(failingExtractor{}, NewPatternExtractor(), slog.Default())

	fields, err := e.Extract(context.Background(), "pickup: hotel lobby, 17:30", booking.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "hotel lobby", fields.Pickup)
	assert.Equal(t, "17:30", fields.Time)
}

func TestFallbackExtractorPrimaryWins(t *testing.T) {
	client := &fakeLLMClient{text: `{"destination":"airport"}`}
	e := NewFallbackExtractor(NewLLMExtractor(client, "m"), NewPatternExtractor(), slog.Default())

	fields, err := e.Extract(context.Background(), "take me to the airport", booking.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "airport", fields.Destination)
}
