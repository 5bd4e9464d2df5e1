package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacekopitek-cloud/gymfix/internal/dialog"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
)

func (b *Bot) showMenu(chatID int64, u *users.User) {
	text := fmt.Sprintf("Zalogowano: %s (%s)", u.Name, roleLabel(u.Role))
	b.send(withKeyboard(chatID, text, menuKeyboard(u)))
}

func (b *Bot) handleLoginEmail(chatID int64, text string) {
	if text == "" {
		b.text(chatID, "Podaj email:")
		return
	}
	b.states.Set(chatID, dialog.StateLoginPassword, dialog.Payload{"email": text})
	b.text(chatID, "Podaj hasło:")
}

func (b *Bot) handleLoginPassword(chatID int64, st dialog.Item, text string) {
	email, _ := dialog.GetString(st.Payload, "email")
	u, err := b.auth.Login(chatID, email, text)
	b.states.Reset(chatID)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.log.Info("login", "user", u.ID)
	b.showMenu(chatID, &u)
}

// handleScan treats the scanned code as a SKU search query.
func (b *Bot) handleScan(chatID int64, code string) {
	if _, ok := b.current(chatID); !ok {
		return
	}
	code = strings.TrimSpace(code)
	if code == "" {
		b.text(chatID, "Użycie: /scan <kod>")
		return
	}
	found := b.registry.SearchParts(code)
	if len(found) == 0 {
		b.text(chatID, fmt.Sprintf("Brak części dla kodu %q.", code))
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Wyniki dla %q:\n", code))
	for _, p := range found {
		sb.WriteString(fmt.Sprintf("• %s (%s) — %s, %s%s\n", p.Name, p.SKU, fmtQty(p), p.Location, lowBadge(p)))
	}
	b.text(chatID, sb.String())
}

func (b *Bot) handleFactoryReset(ctx context.Context, chatID int64, u *users.User) {
	if err := users.Require(u, users.PermManageUsers); err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	if err := b.store.Reset(ctx); err != nil {
		b.log.Error("factory reset failed", "err", err)
		b.text(chatID, "Nie udało się przywrócić danych fabrycznych.")
		return
	}
	// Sessions may now point at removed accounts; force a re-login.
	b.auth.Logout(chatID)
	b.states.Reset(chatID)
	b.text(chatID, "Przywrócono dane fabryczne. Zaloguj się ponownie: /login")
}
