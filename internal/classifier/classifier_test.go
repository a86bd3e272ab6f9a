package classifier

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manhsontran/topgo-rag-chatbot/internal/llm"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestClassify_VenueKeywords(t *testing.T) {
	mock := &llm.MockClient{}
	c := New(mock, testLogger())

	tests := []struct {
		name  string
		query string
	}{
		{name: "category noun", query: "nhà hàng Ý ngon"},
		{name: "district name", query: "chỗ nào hay ho ở cầu giấy"},
		{name: "price adjective", query: "chỗ nào giá rẻ"},
		{name: "find verb", query: "gợi ý cho tôi vài chỗ"},
		{name: "food noun", query: "lẩu ngon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(context.Background(), tt.query)
			assert.True(t, got.NeedsRetrieval)
			assert.Equal(t, models.KindVenueQuery, got.Kind)
		})
	}

	// Keyword matches never consult the model.
	assert.Equal(t, 0, mock.GenerateCalls)
}

func TestClassify_Greeting(t *testing.T) {
	c := New(&llm.MockClient{}, testLogger())

	got := c.Classify(context.Background(), "Xin chào")
	assert.False(t, got.NeedsRetrieval)
	assert.Equal(t, models.KindGreeting, got.Kind)

	// "hello" embedded in a venue question is not a greeting.
	got = c.Classify(context.Background(), "hello tìm quán bar")
	assert.True(t, got.NeedsRetrieval)
}

func TestClassify_OffTopic(t *testing.T) {
	c := New(&llm.MockClient{}, testLogger())

	got := c.Classify(context.Background(), "thời tiết hôm nay thế nào")
	assert.False(t, got.NeedsRetrieval)
	assert.Equal(t, models.KindOffTopic, got.Kind)
}

func TestClassify_ModelVerdict(t *testing.T) {
	mock := &llm.MockClient{}
	mock.Enqueue(`{"needs_search": false, "response_type": "general_question", "reasoning": "asks about the bot"}`)
	c := New(mock, testLogger())

	got := c.Classify(context.Background(), "bạn làm được gì")
	assert.False(t, got.NeedsRetrieval)
	assert.Equal(t, models.KindGeneralQuestion, got.Kind)
	assert.Equal(t, 1, mock.GenerateCalls)
}

func TestClassify_ModelDownDefaultsToVenueQuery(t *testing.T) {
	mock := &llm.MockClient{Down: true}
	c := New(mock, testLogger())

	got := c.Classify(context.Background(), "chỗ này thế nào nhỉ")
	assert.True(t, got.NeedsRetrieval)
	assert.Equal(t, models.KindVenueQuery, got.Kind)
}

func TestClassify_GarbageReplyDefaultsToVenueQuery(t *testing.T) {
	mock := &llm.MockClient{Reply: "tôi không chắc lắm"}
	c := New(mock, testLogger())

	got := c.Classify(context.Background(), "chỗ này thế nào nhỉ")
	assert.True(t, got.NeedsRetrieval)
	assert.Equal(t, models.KindVenueQuery, got.Kind)
}

func TestClassify_NilClient(t *testing.T) {
	c := New(nil, testLogger())

	got := c.Classify(context.Background(), "một câu khó phân loại nhỉ")
	assert.True(t, got.NeedsRetrieval)
}
