// Package bot wires the Telegram transport to the wizard engine and the
// access registry. Updates are consumed from one long-poll channel and
// handled to completion sequentially, so at most one handler runs at a time.
package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hawaesanda/BotFTM-master/internal/ingest"
	"github.com/hawaesanda/BotFTM-master/internal/registry"
	"github.com/hawaesanda/BotFTM-master/internal/wizard"
)

// Bot is the Telegram front-end.
type Bot struct {
	api      *tgbotapi.BotAPI
	reg      *registry.Registry
	engine   *wizard.Engine
	sessions map[int64]wizard.Session
	client   *http.Client
}

// New creates a bot for the given token.
func New(token string, reg *registry.Registry, engine *wizard.Engine) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Bot{
		api:      api,
		reg:      reg,
		engine:   engine,
		sessions: make(map[int64]wizard.Session),
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Run registers the command menu and processes updates until the context is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.setCommandMenu(); err != nil {
		log.Printf("[BOT] failed to set command menu: %v", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Printf("[BOT] @%s running", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Document != nil:
		b.handleDocument(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

// handleCallback decodes the button payload once and feeds it to the engine.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Printf("[BOT] answer callback failed: %v", err)
	}
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	payload, ok := wizard.ParsePayload(cq.Data)
	if !ok {
		log.Printf("[BOT] unknown callback payload %q", cq.Data)
		return
	}

	session, active := b.sessions[chatID]
	if !active || session.Done() {
		return
	}

	session, msgs := b.engine.HandleButton(ctx, session, payload, userID(cq.From))
	b.storeSession(chatID, session)
	b.render(chatID, cq.Message.MessageID, msgs)
}

// handleText feeds free text into a waiting session, or nudges the user
// toward the command menu when nothing is in flight.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	session, active := b.sessions[chatID]
	if !active || session.Done() {
		b.sendPlain(chatID, "⚠️ Maaf, saya tidak mengenali pesan ini.\nGunakan menu `/` untuk melihat perintah yang tersedia.")
		return
	}

	session, msgs := b.engine.HandleText(ctx, session, msg.Text, userID(msg.From))
	b.storeSession(chatID, session)
	b.render(chatID, 0, msgs)
}

// handleDocument downloads an uploaded file and feeds it to the ingestion
// flows. Documents outside an upload-waiting session are ignored.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	session, active := b.sessions[chatID]
	if !active || session.State != wizard.StateUpload {
		return
	}

	doc := msg.Document
	data, err := b.download(doc.FileID)
	if err != nil {
		log.Printf("[BOT] file download failed: %v", err)
		b.sendPlain(chatID, "❌ Gagal mengunduh file. Silakan kirim ulang.")
		return
	}

	upload := ingest.Upload{
		FileName: doc.FileName,
		MIMEType: doc.MimeType,
		Data:     data,
	}
	session, msgs := b.engine.HandleUpload(ctx, session, upload, userID(msg.From))
	b.storeSession(chatID, session)
	b.render(chatID, 0, msgs)
}

// download fetches a Telegram file's bytes.
func (b *Bot) download(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}
	resp, err := b.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch file: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// storeSession keeps or discards a session depending on whether it reached a
// terminal state.
func (b *Bot) storeSession(chatID int64, s wizard.Session) {
	if s.Done() {
		delete(b.sessions, chatID)
		return
	}
	b.sessions[chatID] = s
}

// render sends the engine's replies. editMessageID is the message carrying
// the pressed button; messages flagged Edit rewrite it in place.
func (b *Bot) render(chatID int64, editMessageID int, msgs []wizard.Message) {
	for _, m := range msgs {
		parseMode := tgbotapi.ModeMarkdown
		if m.HTML {
			parseMode = tgbotapi.ModeHTML
		}

		if m.Edit && editMessageID != 0 {
			if len(m.Buttons) > 0 {
				edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, editMessageID, m.Text, keyboard(m.Buttons))
				edit.ParseMode = parseMode
				b.send(edit)
			} else {
				edit := tgbotapi.NewEditMessageText(chatID, editMessageID, m.Text)
				edit.ParseMode = parseMode
				b.send(edit)
			}
			continue
		}

		out := tgbotapi.NewMessage(chatID, m.Text)
		out.ParseMode = parseMode
		if len(m.Buttons) > 0 {
			out.ReplyMarkup = keyboard(m.Buttons)
		}
		b.send(out)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("[BOT] send failed: %v", err)
	}
}

func (b *Bot) sendPlain(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	b.send(out)
}

func keyboard(rows [][]wizard.Button) tgbotapi.InlineKeyboardMarkup {
	markup := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			line = append(line, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		markup = append(markup, line)
	}
	return tgbotapi.NewInlineKeyboardMarkup(markup...)
}

func userID(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return fmt.Sprint(u.ID)
}

// menuCommands is the command menu registered with Telegram. Every entry
// command routed by handleCommand must be listed here.
var menuCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Memulai bot"},
	{Command: "end", Description: "Mengakhiri sesi"},
	{Command: "cancel", Description: "Membatalkan proses"},
	{Command: "register", Description: "Registrasi user baru"},
	{Command: "removeuser", Description: "Hapus user"},
	{Command: "listuser", Description: "Lihat daftar user"},
	{Command: "promote", Description: "Jadikan admin"},
	{Command: "dismiss", Description: "Turunkan admin"},
	{Command: "cekgpon", Description: "Cek data GPON"},
	{Command: "ceksto", Description: "Cek status STO"},
	{Command: "infosto", Description: "Informasi STO (Metro)"},
	{Command: "cekmetro", Description: "Cek data Metro"},
	{Command: "showftm", Description: "Tampilkan data FTM"},
	{Command: "showgpon", Description: "Tampilkan data per GPON"},
	{Command: "showsto", Description: "Tampilkan data per STO"},
	{Command: "inputftm", Description: "Upload data FTM"},
	{Command: "inputmetro", Description: "Upload data Metro"},
}

func (b *Bot) setCommandMenu() error {
	_, err := b.api.Request(tgbotapi.NewSetMyCommands(menuCommands...))
	return err
}
