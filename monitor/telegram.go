package monitor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"elpris/internal/clients_api/tibber"
	"elpris/internal/features/pricechart"
	"elpris/internal/infra/fs"
	logging "elpris/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const chartWaitTimeout = 2 * time.Second

type photoSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPublisher posts each rendered chart as a photo to one chat.
type TelegramPublisher struct {
	bot    photoSender
	chatID int64
}

// NewTelegramPublisher authorizes the bot token with the Telegram API.
func NewTelegramPublisher(token, chatID string) (*TelegramPublisher, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return nil, err
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	logging.LogSuccess("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	return &TelegramPublisher{bot: bot, chatID: id}, nil
}

func (p *TelegramPublisher) Publish(ctx context.Context, result pricechart.RenderResult, info *tibber.PriceInfo) error {
	if _, err := fs.WaitForFile(ctx, result.Path, chartWaitTimeout); err != nil {
		return fmt.Errorf("chart file not available: %w", err)
	}

	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FilePath(result.Path))
	photo.Caption = chartCaption(info)
	photo.ParseMode = tgbotapi.ModeHTML

	if _, err := p.bot.Send(photo); err != nil {
		return fmt.Errorf("failed to send chart: %w", err)
	}

	logging.LogInfo("Chart sent to Telegram", zap.Int64("chatID", p.chatID), zap.String("path", result.Path))
	return nil
}

func chartCaption(info *tibber.PriceInfo) string {
	var b strings.Builder
	if len(info.Current) > 0 {
		fmt.Fprintf(&b, "<b>Elpris now:</b> %s Kr/kWh", info.Current[0].Total.StringFixed(2))
	}
	if max, ok := info.Today.Max(); ok {
		fmt.Fprintf(&b, "\nToday max: %s Kr/kWh", max.StringFixed(2))
	}
	if max, ok := info.Tomorrow.Max(); ok {
		fmt.Fprintf(&b, "\nTomorrow max: %s Kr/kWh", max.StringFixed(2))
	}
	return b.String()
}

func parseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", s, err)
	}
	return id, nil
}
