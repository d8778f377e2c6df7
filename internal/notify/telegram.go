package notify

import (
	"fmt"
	"time"

	"clipcap/pkg/logger"
	"clipcap/pkg/model"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v4"
)

// TelegramNotifier posts job outcomes to an ops chat. It is optional: with no
// bot token configured the constructor returns nil and callers skip it.
type TelegramNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram notifications enabled", zap.Int64("chat_id", chatID))

	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// JobCompleted announces a successfully rendered job.
func (n *TelegramNotifier) JobCompleted(job *model.Job) {
	if n == nil {
		return
	}
	outputKey := ""
	if job.OutputKey != nil {
		outputKey = *job.OutputKey
	}
	n.send(fmt.Sprintf("✅ Captions rendered\nJob: %s\nOutput: %s", job.ID, outputKey))
}

// JobFailed announces a failed job with its error text.
func (n *TelegramNotifier) JobFailed(job *model.Job) {
	if n == nil {
		return
	}
	errorText := ""
	if job.ErrorText != nil {
		errorText = *job.ErrorText
	}
	n.send(fmt.Sprintf("❌ Caption job failed\nJob: %s\nError: %s", job.ID, errorText))
}

func (n *TelegramNotifier) send(text string) {
	if _, err := n.bot.Send(tele.ChatID(n.chatID), text); err != nil {
		logger.Warn("Failed to send telegram notification", zap.Error(err))
	}
}
