package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jacekopitek-cloud/gymfix/internal/dialog"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/clients"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
)

const dateLayout = "2006-01-02"

func (b *Bot) onClientCallback(ctx context.Context, chatID int64, u *users.User, data string) {
	switch {
	case data == "cli:list":
		b.showClientList(chatID)
	case data == "cli:new":
		if err := users.Require(u, users.PermManageClients); err != nil {
			b.text(chatID, presentErr(err))
			return
		}
		b.states.Set(chatID, dialog.StateClientName, dialog.Payload{})
		b.text(chatID, "Nazwa klienta:")
	case strings.HasPrefix(data, "cli:item:"):
		b.showClientCard(chatID, u, strings.TrimPrefix(data, "cli:item:"))
	case strings.HasPrefix(data, "cli:mach:"):
		if err := users.Require(u, users.PermManageClients); err != nil {
			b.text(chatID, presentErr(err))
			return
		}
		clientID := strings.TrimPrefix(data, "cli:mach:")
		b.states.Set(chatID, dialog.StateMachineModel, dialog.Payload{"client_id": clientID})
		b.text(chatID, "Model maszyny:")
	}
}

func (b *Bot) showClientList(chatID int64) {
	list := b.registry.Clients()
	if len(list) == 0 {
		b.text(chatID, "Brak klientów.")
		return
	}
	ids := make([]string, len(list))
	labels := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
		labels[i] = fmt.Sprintf("%s (%d maszyn)", c.Name, len(c.Machines))
	}
	b.send(withKeyboard(chatID, "Klienci:", pickKeyboard("cli:item:", ids, labels, "menu:clients")))
}

func (b *Bot) showClientCard(chatID int64, u *users.User, id string) {
	c, err := b.registry.Client(id)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	now := time.Now()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏢 %s\nAdres: %s\nOsoba kontaktowa: %s\nTelefon: %s\n",
		c.Name, c.Address, c.ContactPerson, c.Phone))
	if len(c.Machines) == 0 {
		sb.WriteString("Brak maszyn.\n")
	} else {
		sb.WriteString("Maszyny:\n")
		for _, m := range c.Machines {
			sb.WriteString(fmt.Sprintf("  • %s (%s), instalacja %s, gwarancja do %s — %s\n",
				m.Model, m.SerialNumber,
				m.InstallDate.Format(dateLayout), m.WarrantyUntil.Format(dateLayout),
				warrantyLabel(m.Warranty(now))))
		}
	}
	b.send(withKeyboard(chatID, sb.String(), clientKeyboard(c.ID, u)))
}

func warrantyLabel(s clients.WarrantyStatus) string {
	if s == clients.WarrantyActive {
		return "gwarancja aktywna"
	}
	return "gwarancja wygasła"
}

func (b *Bot) handleClientFlowText(ctx context.Context, chatID int64, st dialog.Item, text string) {
	if text == "" {
		b.text(chatID, "Podaj wartość albo /cancel.")
		return
	}
	p := st.Payload
	switch st.State {
	case dialog.StateClientName:
		p["name"] = text
		b.states.Set(chatID, dialog.StateClientAddress, p)
		b.text(chatID, "Adres:")
	case dialog.StateClientAddress:
		p["address"] = text
		b.states.Set(chatID, dialog.StateClientPerson, p)
		b.text(chatID, "Osoba kontaktowa:")
	case dialog.StateClientPerson:
		p["person"] = text
		b.states.Set(chatID, dialog.StateClientPhone, p)
		b.text(chatID, "Telefon:")
	case dialog.StateClientPhone:
		u, ok := b.current(chatID)
		if !ok {
			return
		}
		name, _ := dialog.GetString(p, "name")
		address, _ := dialog.GetString(p, "address")
		person, _ := dialog.GetString(p, "person")
		b.states.Reset(chatID)
		c, err := b.registry.AddClient(ctx, u, name, address, person, text)
		if err != nil {
			b.text(chatID, presentErr(err))
			return
		}
		b.showClientCard(chatID, u, c.ID)
	}
}

func (b *Bot) handleMachineFlowText(ctx context.Context, chatID int64, st dialog.Item, text string) {
	if text == "" {
		b.text(chatID, "Podaj wartość albo /cancel.")
		return
	}
	p := st.Payload
	switch st.State {
	case dialog.StateMachineModel:
		p["model"] = text
		b.states.Set(chatID, dialog.StateMachineSerial, p)
		b.text(chatID, "Numer seryjny:")
	case dialog.StateMachineSerial:
		p["serial"] = text
		b.states.Set(chatID, dialog.StateMachineInstall, p)
		b.text(chatID, "Data instalacji (RRRR-MM-DD):")
	case dialog.StateMachineInstall:
		if _, err := time.Parse(dateLayout, text); err != nil {
			b.text(chatID, "Nieprawidłowa data, format RRRR-MM-DD:")
			return
		}
		p["install"] = text
		b.states.Set(chatID, dialog.StateMachineWarranty, p)
		b.text(chatID, "Gwarancja do (RRRR-MM-DD):")
	case dialog.StateMachineWarranty:
		warranty, err := time.Parse(dateLayout, text)
		if err != nil {
			b.text(chatID, "Nieprawidłowa data, format RRRR-MM-DD:")
			return
		}
		u, ok := b.current(chatID)
		if !ok {
			return
		}
		clientID, _ := dialog.GetString(p, "client_id")
		model, _ := dialog.GetString(p, "model")
		serial, _ := dialog.GetString(p, "serial")
		installStr, _ := dialog.GetString(p, "install")
		install, _ := time.Parse(dateLayout, installStr)
		b.states.Reset(chatID)
		_, err = b.registry.AddMachine(ctx, u, clientID, clients.ClientMachine{
			Model:         model,
			SerialNumber:  serial,
			InstallDate:   install,
			WarrantyUntil: warranty,
		})
		if err != nil {
			b.text(chatID, presentErr(err))
			return
		}
		b.showClientCard(chatID, u, clientID)
	}
}
