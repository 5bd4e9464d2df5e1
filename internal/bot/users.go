package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacekopitek-cloud/gymfix/internal/accounts"
	"github.com/jacekopitek-cloud/gymfix/internal/dialog"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
)

func (b *Bot) onUserCallback(ctx context.Context, chatID int64, u *users.User, data string) {
	if err := users.Require(u, users.PermManageUsers); err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	switch {
	case data == "usr:list":
		b.showUserList(chatID)
	case data == "usr:new":
		b.states.Set(chatID, dialog.StateUserName, dialog.Payload{})
		b.text(chatID, "Imię i nazwisko:")
	case strings.HasPrefix(data, "usr:item:"):
		b.showUserCard(chatID, strings.TrimPrefix(data, "usr:item:"))
	case strings.HasPrefix(data, "usr:del:"):
		id := strings.TrimPrefix(data, "usr:del:")
		if err := b.accounts.Delete(ctx, u, id); err != nil {
			b.text(chatID, presentErr(err))
			return
		}
		b.text(chatID, "Konto usunięte.")
		b.showUserList(chatID)
	case strings.HasPrefix(data, "usr:role:"):
		b.handleUserRolePick(ctx, chatID, u, users.Role(strings.TrimPrefix(data, "usr:role:")))
	}
}

func (b *Bot) showUserList(chatID int64) {
	list := b.accounts.List()
	ids := make([]string, len(list))
	labels := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.ID
		labels[i] = fmt.Sprintf("%s — %s", a.Name, roleLabel(a.Role))
	}
	b.send(withKeyboard(chatID, "Konta:", pickKeyboard("usr:item:", ids, labels, "menu:users")))
}

func (b *Bot) showUserCard(chatID int64, id string) {
	a, err := b.accounts.Get(id)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👤 %s\nEmail: %s\nRola: %s\n", a.Name, a.Email, roleLabel(a.Role)))
	if a.Phone != "" {
		sb.WriteString("Telefon: " + a.Phone + "\n")
	}
	if a.Position != "" {
		sb.WriteString("Stanowisko: " + a.Position + "\n")
	}
	sb.WriteString("Uprawnienia:\n")
	for _, p := range a.Permissions {
		sb.WriteString("  • " + string(p) + "\n")
	}
	kb := pickKeyboard("usr:del:", []string{a.ID}, []string{"🗑 Usuń konto"}, "usr:list")
	b.send(withKeyboard(chatID, sb.String(), kb))
}

func (b *Bot) handleUserFlowText(chatID int64, st dialog.Item, text string) {
	if text == "" {
		b.text(chatID, "Podaj wartość albo /cancel.")
		return
	}
	p := st.Payload
	switch st.State {
	case dialog.StateUserName:
		p["name"] = text
		b.states.Set(chatID, dialog.StateUserEmail, p)
		b.text(chatID, "Email:")
	case dialog.StateUserEmail:
		p["email"] = text
		b.states.Set(chatID, dialog.StateUserPassword, p)
		b.text(chatID, "Hasło:")
	case dialog.StateUserPassword:
		p["password"] = text
		b.states.Set(chatID, dialog.StateUserRole, p)
		b.send(withKeyboard(chatID, "Rola:", roleKeyboard()))
	}
}

func (b *Bot) handleUserRolePick(ctx context.Context, chatID int64, u *users.User, role users.Role) {
	st := b.states.Get(chatID)
	if st.State != dialog.StateUserRole {
		return
	}
	name, _ := dialog.GetString(st.Payload, "name")
	email, _ := dialog.GetString(st.Payload, "email")
	password, _ := dialog.GetString(st.Payload, "password")
	b.states.Reset(chatID)
	a, err := b.accounts.Create(ctx, u, accounts.NewUser{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showUserCard(chatID, a.ID)
}
