package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hawaesanda/BotFTM-master/internal/models"
	"github.com/hawaesanda/BotFTM-master/internal/registry"
	"github.com/hawaesanda/BotFTM-master/internal/wizard"
)

// entryFlows maps entry commands to the wizard flow they start.
var entryFlows = map[string]wizard.Flow{
	"cekgpon":    wizard.FlowLookupFTM,
	"cekmetro":   wizard.FlowLookupMetro,
	"ceksto":     wizard.FlowSiteStatus,
	"infosto":    wizard.FlowSiteStatus,
	"showftm":    wizard.FlowShowFTM,
	"showsto":    wizard.FlowShowFTM,
	"showgpon":   wizard.FlowShowFTM,
	"inputftm":   wizard.FlowInputFTM,
	"inputmetro": wizard.FlowInputMetro,
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	id := userID(msg.From)
	cmd := msg.Command()

	if flow, ok := entryFlows[cmd]; ok {
		// Entry commands restart mid-flight sessions; last write wins.
		session, msgs := b.engine.Start(flow, id)
		b.storeSession(chatID, session)
		b.render(chatID, 0, msgs)
		return
	}

	switch cmd {
	case "start":
		b.cmdStart(msg)
	case "end":
		b.cmdEnd(msg)
	case "cancel":
		b.cmdCancel(msg)
	case "register":
		b.cmdRegister(msg)
	case "removeuser":
		b.cmdRemoveUser(msg)
	case "listuser":
		b.cmdListUser(msg)
	case "promote":
		b.cmdPromote(msg)
	case "dismiss":
		b.cmdDismiss(msg)
	default:
		b.sendPlain(chatID, fmt.Sprintf(
			"❌ Perintah `/%s` tidak dikenali.\nGunakan menu `/` untuk melihat daftar perintah.", cmd))
	}
}

// cmdStart greets a registered user. When the registry is empty the caller
// becomes the first admin automatically; this is the only unauthenticated
// path in the whole bot.
func (b *Bot) cmdStart(msg *tgbotapi.Message) {
	id := userID(msg.From)

	switch fired, err := b.bootstrapFirstAdmin(msg.From); {
	case err != nil:
		log.Printf("[BOT] bootstrap admin failed: %v", err)
		b.sendPlain(msg.Chat.ID, "❌ Terjadi kesalahan saat registrasi.")
		return
	case fired:
		b.sendPlain(msg.Chat.ID, "👑 Kamu adalah pengguna pertama. Ditambahkan sebagai *admin* otomatis.")
		return
	}

	if !b.reg.IsAuthorized(id) {
		b.sendPlain(msg.Chat.ID, "❌ Maaf, Anda tidak memiliki izin untuk menggunakan bot ini.")
		return
	}

	b.sendPlain(msg.Chat.ID, fmt.Sprintf(
		"Halo %s! Bot siap untuk digunakan.\nGunakan menu `/` di bawah untuk melihat perintah yang tersedia.",
		msg.From.FirstName))
}

// bootstrapFirstAdmin registers the caller as admin when the registry is
// empty. It reports whether the bootstrap path fired.
func (b *Bot) bootstrapFirstAdmin(u *tgbotapi.User) (bool, error) {
	if !b.reg.IsEmpty() {
		return false, nil
	}
	id := userID(u)
	// NIK defaults to the telegram id; an admin can correct it later.
	return true, b.reg.Register(firstAdminName(u), id, id, models.RoleAdmin)
}

// firstAdminName assembles the display name for the bootstrap admin record,
// falling back to the username when the profile has no name.
func firstAdminName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}

func (b *Bot) cmdEnd(msg *tgbotapi.Message) {
	if !b.reg.IsAuthorized(userID(msg.From)) {
		b.sendPlain(msg.Chat.ID, "❌ Maaf, Anda tidak memiliki izin.")
		return
	}
	delete(b.sessions, msg.Chat.ID)
	b.sendPlain(msg.Chat.ID, "✅ Sesi kamu telah diakhiri.")
}

func (b *Bot) cmdCancel(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	session := b.sessions[chatID]
	session, msgs := b.engine.Cancel(session, userID(msg.From))
	b.storeSession(chatID, session)
	b.render(chatID, 0, msgs)
}

// cmdRegister handles self-registration: /register "Nama Lengkap" NIK
func (b *Bot) cmdRegister(msg *tgbotapi.Message) {
	id := userID(msg.From)
	if b.reg.IsAuthorized(id) {
		b.sendPlain(msg.Chat.ID, "✅ Kamu sudah terdaftar.")
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.sendPlain(msg.Chat.ID, "⚠️ Gunakan format: `/register \"Nama Lengkap\" NIK`")
		return
	}

	name := strings.Trim(strings.Join(args[:len(args)-1], " "), "\"")
	nik := args[len(args)-1]

	if err := b.reg.Register(name, nik, id, models.RoleUser); err != nil {
		b.sendPlain(msg.Chat.ID, "⚠️ Gagal menambahkan. Mungkin kamu sudah terdaftar.")
		return
	}
	b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Registrasi berhasil. Selamat datang, *%s*!", name))
}

func (b *Bot) cmdRemoveUser(msg *tgbotapi.Message) {
	adminID := userID(msg.From)
	if !b.reg.IsAdmin(adminID) {
		b.sendPlain(msg.Chat.ID, "❌ Kamu tidak memiliki izin untuk menghapus user.")
		return
	}

	targetID, ok := singleArg(msg)
	if !ok {
		b.sendPlain(msg.Chat.ID, "⚠️ Gunakan format: `/removeuser TELEGRAM_ID`")
		return
	}
	if targetID == adminID {
		b.sendPlain(msg.Chat.ID, "⚠️ Kamu tidak bisa menghapus dirimu sendiri.")
		return
	}

	switch err := b.reg.Remove(targetID); {
	case err == nil:
		b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Telegram ID %s berhasil dihapus.", targetID))
	case errors.Is(err, registry.ErrNotFound):
		b.sendPlain(msg.Chat.ID, "ℹ️ User tidak ditemukan.")
	case errors.Is(err, registry.ErrLastAdmin):
		b.sendPlain(msg.Chat.ID, "⚠️ Tidak bisa menghapus admin terakhir.")
	default:
		log.Printf("[BOT] removeuser failed: %v", err)
		b.sendPlain(msg.Chat.ID, "❌ Terjadi kesalahan saat menghapus user.")
	}
}

func (b *Bot) cmdPromote(msg *tgbotapi.Message) {
	if !b.reg.IsAdmin(userID(msg.From)) {
		b.sendPlain(msg.Chat.ID, "❌ Kamu tidak memiliki izin untuk promote user.")
		return
	}

	targetID, ok := singleArg(msg)
	if !ok {
		b.sendPlain(msg.Chat.ID, "⚠️ Gunakan format: `/promote TELEGRAM_ID`")
		return
	}

	switch err := b.reg.Promote(targetID); {
	case err == nil:
		b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Telegram ID %s berhasil dijadikan *admin*.", targetID))
	case errors.Is(err, registry.ErrNotFound):
		b.sendPlain(msg.Chat.ID, "ℹ️ User tidak ditemukan.")
	default:
		log.Printf("[BOT] promote failed: %v", err)
		b.sendPlain(msg.Chat.ID, "❌ Terjadi kesalahan saat promote user.")
	}
}

func (b *Bot) cmdDismiss(msg *tgbotapi.Message) {
	if !b.reg.IsAdmin(userID(msg.From)) {
		b.sendPlain(msg.Chat.ID, "❌ Kamu tidak memiliki izin untuk dismiss admin.")
		return
	}

	targetID, ok := singleArg(msg)
	if !ok {
		b.sendPlain(msg.Chat.ID, "⚠️ Gunakan format: `/dismiss TELEGRAM_ID`")
		return
	}

	switch err := b.reg.Dismiss(targetID); {
	case err == nil:
		b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Telegram ID %s berhasil diturunkan menjadi *user*.", targetID))
	case errors.Is(err, registry.ErrNotFound):
		b.sendPlain(msg.Chat.ID, "ℹ️ User tidak ditemukan.")
	case errors.Is(err, registry.ErrLastAdmin):
		b.sendPlain(msg.Chat.ID, "⚠️ Tidak bisa menurunkan admin terakhir.")
	default:
		log.Printf("[BOT] dismiss failed: %v", err)
		b.sendPlain(msg.Chat.ID, "❌ Terjadi kesalahan saat dismiss admin.")
	}
}

func (b *Bot) cmdListUser(msg *tgbotapi.Message) {
	if !b.reg.IsAdmin(userID(msg.From)) {
		b.sendPlain(msg.Chat.ID, "❌ Hanya admin yang dapat melihat daftar pengguna.")
		return
	}

	users, err := b.reg.ListAll()
	if err != nil {
		log.Printf("[BOT] listuser failed: %v", err)
		b.sendPlain(msg.Chat.ID, "❌ Gagal membaca daftar pengguna.")
		return
	}
	if len(users) == 0 {
		b.sendPlain(msg.Chat.ID, "📭 Daftar pengguna kosong.")
		return
	}

	var lines []string
	for _, u := range users {
		lines = append(lines, fmt.Sprintf("- %s (%s) [@%s] - %s", u.Name, u.NIK, u.TelegramID, u.Role))
	}
	b.sendPlain(msg.Chat.ID, "📋 *Daftar Pengguna:*\n\n"+strings.Join(lines, "\n"))
}

func singleArg(msg *tgbotapi.Message) (string, bool) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return "", false
	}
	return args[0], true
}
