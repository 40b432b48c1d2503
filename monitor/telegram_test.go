package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"elpris/internal/clients_api/tibber"
	"elpris/internal/features/pricechart"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, s.err
}

func writeChart(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "elpris.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))
	return path
}

func TestTelegramPublisher_SendsPhoto(t *testing.T) {
	sender := &fakeSender{}
	p := &TelegramPublisher{bot: sender, chatID: -100123}
	path := writeChart(t)

	info := sampleInfo()
	info.Tomorrow = tibber.PriceSeries{{Hour: 18, Total: decimal.RequireFromString("3.1")}}

	err := p.Publish(context.Background(), pricechart.RenderResult{Path: path}, info)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100123), photo.ChatID)
	assert.Equal(t, tgbotapi.FilePath(path), photo.File)
	assert.Contains(t, photo.Caption, "1.10 Kr/kWh")
	assert.Contains(t, photo.Caption, "Tomorrow max: 3.10")
}

func TestTelegramPublisher_Errors(t *testing.T) {
	sender := &fakeSender{err: errors.New("forbidden")}
	p := &TelegramPublisher{bot: sender, chatID: 1}

	err := p.Publish(context.Background(), pricechart.RenderResult{Path: writeChart(t)}, sampleInfo())
	require.Error(t, err)

	err = p.Publish(context.Background(), pricechart.RenderResult{Path: filepath.Join(t.TempDir(), "missing.png")}, sampleInfo())
	require.Error(t, err)
	assert.Len(t, sender.sent, 1)
}

func TestChartCaption_TodayOnly(t *testing.T) {
	caption := chartCaption(sampleInfo())
	assert.Contains(t, caption, "Today max: 1.10")
	assert.NotContains(t, caption, "Tomorrow")
}

func TestParseChatID(t *testing.T) {
	id, err := parseChatID(" -100200300 ")
	require.NoError(t, err)
	assert.Equal(t, int64(-100200300), id)

	_, err = parseChatID("chat")
	require.Error(t, err)
}
