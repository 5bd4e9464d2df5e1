package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jacekopitek-cloud/gymfix/internal/dialog"
)

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.states.Reset(chatID)
			b.text(chatID, "Gymfix — serwis i magazyn sprzętu fitness.\nZaloguj się: /login")
		case "login":
			b.states.Set(chatID, dialog.StateLoginEmail, dialog.Payload{})
			b.text(chatID, "Podaj email:")
		case "logout":
			b.auth.Logout(chatID)
			b.states.Reset(chatID)
			b.text(chatID, "Wylogowano.")
		case "menu":
			if u, ok := b.current(chatID); ok {
				b.showMenu(chatID, u)
			}
		case "scan":
			// A scanned barcode arrives as a SKU string; it only
			// pre-fills the search, never touches stock.
			b.handleScan(chatID, msg.CommandArguments())
		case "cancel":
			b.states.Reset(chatID)
			b.text(chatID, "Anulowano.")
		default:
			b.text(chatID, "Nieznana komenda. Dostępne: /login /logout /menu /scan /cancel")
		}
		return
	}

	st := b.states.Get(chatID)
	text := strings.TrimSpace(msg.Text)

	switch st.State {
	case dialog.StateLoginEmail:
		b.handleLoginEmail(chatID, text)
	case dialog.StateLoginPassword:
		b.handleLoginPassword(chatID, st, text)

	case dialog.StateStockAddQty:
		b.handleStockAddQty(ctx, chatID, st, text)
	case dialog.StateAssembleQty:
		b.handleAssembleQty(ctx, chatID, st, text)
	case dialog.StateDisassembleQty:
		b.handleDisassembleQty(ctx, chatID, st, text)

	case dialog.StatePartName, dialog.StatePartSKU, dialog.StatePartQty,
		dialog.StatePartMin, dialog.StatePartPrice, dialog.StatePartLocation,
		dialog.StatePartBOMQty:
		b.handlePartFlowText(ctx, chatID, st, text)

	case dialog.StateJobDesc:
		b.handleJobDesc(ctx, chatID, st, text)
	case dialog.StateJobNotes:
		b.handleJobNotes(ctx, chatID, st, text)

	case dialog.StateClientName, dialog.StateClientAddress,
		dialog.StateClientPerson, dialog.StateClientPhone:
		b.handleClientFlowText(ctx, chatID, st, text)

	case dialog.StateMachineModel, dialog.StateMachineSerial,
		dialog.StateMachineInstall, dialog.StateMachineWarranty:
		b.handleMachineFlowText(ctx, chatID, st, text)

	case dialog.StateUserName, dialog.StateUserEmail, dialog.StateUserPassword:
		b.handleUserFlowText(chatID, st, text)

	default:
		if u, ok := b.current(chatID); ok {
			b.showMenu(chatID, u)
		}
	}
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	cb := upd.CallbackQuery
	chatID := cb.Message.Chat.ID
	data := cb.Data
	b.answerCallback(cb, "", false)

	u, ok := b.current(chatID)
	if !ok {
		return
	}

	switch {
	case data == "nav:menu":
		b.showMenu(chatID, u)

	case data == "menu:inv":
		b.send(withKeyboard(chatID, "📦 Magazyn", inventoryKeyboard(u)))
	case data == "menu:jobs":
		b.send(withKeyboard(chatID, "🔧 Zlecenia", jobsKeyboard(u)))
	case data == "menu:clients":
		b.send(withKeyboard(chatID, "🏢 Klienci", clientsKeyboard(u)))
	case data == "menu:users":
		b.send(withKeyboard(chatID, "👥 Użytkownicy", usersKeyboard()))
	case data == "menu:settings":
		b.send(withKeyboard(chatID, "⚙️ Ustawienia", settingsKeyboard()))

	case data == "set:reset":
		b.handleFactoryReset(ctx, chatID, u)

	case strings.HasPrefix(data, "inv:"), strings.HasPrefix(data, "part:"):
		b.onInventoryCallback(ctx, chatID, u, data)
	case strings.HasPrefix(data, "job:"):
		b.onJobCallback(ctx, chatID, u, data)
	case strings.HasPrefix(data, "cli:"):
		b.onClientCallback(ctx, chatID, u, data)
	case strings.HasPrefix(data, "usr:"):
		b.onUserCallback(ctx, chatID, u, data)
	}
}

func withKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	return msg
}
