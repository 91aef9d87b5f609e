// Package bot runs the Telegram entry point: it hands users the Mini App
// button that opens the marketplace. All commerce happens over the HTTP API.
package bot

import (
	"time"

	tele "gopkg.in/telebot.v3"

	"marketbot/config"
	"marketbot/pkg/logger"
)

type Bot struct {
	Bot *tele.Bot
	Cfg *config.Config
	Log logger.ILogger
}

func New(cfg *config.Config, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		Bot: b,
		Cfg: cfg,
		Log: log,
	}
	bot.registerHandlers()
	return bot, nil
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.handleStart)
}

func (b *Bot) handleStart(c tele.Context) error {
	b.Log.Info("bot /start", logger.Int64("telegram_id", c.Sender().ID))

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(tele.Btn{
		Text:   "🛍 Открыть маркетплейс",
		WebApp: &tele.WebApp{URL: b.Cfg.WebAppURL},
	}))

	return c.Send("Добро пожаловать! Нажмите кнопку, чтобы открыть маркетплейс:", markup)
}

func (b *Bot) Start() {
	b.Log.Info("🤖 Marketplace bot started")
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}
