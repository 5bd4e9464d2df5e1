package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/jobs"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/parts"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
)

func row(buttons ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(buttons...)
}

func btn(label, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(label, data)
}

// menuKeyboard shows only the sections the user may at least view.
func menuKeyboard(u *users.User) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if u.Can(users.PermViewInventory) {
		rows = append(rows, row(btn("📦 Magazyn", "menu:inv")))
	}
	if u.Can(users.PermViewJobs) {
		rows = append(rows, row(btn("🔧 Zlecenia", "menu:jobs")))
	}
	if u.Can(users.PermViewClients) {
		rows = append(rows, row(btn("🏢 Klienci", "menu:clients")))
	}
	if u.Can(users.PermManageUsers) {
		rows = append(rows, row(btn("👥 Użytkownicy", "menu:users"), btn("⚙️ Ustawienia", "menu:settings")))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func inventoryKeyboard(u *users.User) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		row(btn("📋 Lista części", "inv:list"), btn("🔻 Niskie stany", "inv:low")),
		row(btn("📤 Eksport XLSX", "inv:export")),
	}
	if u.Can(users.PermManageInventory) {
		rows = append(rows, row(btn("➕ Nowa część", "inv:new")))
	}
	rows = append(rows, row(btn("⬅️ Menu", "nav:menu")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func partKeyboard(p parts.Part, u *users.User) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if u.Can(users.PermManageInventory) {
		rows = append(rows, row(btn("➕ Przyjmij / koryguj", "inv:addstock:"+p.ID)))
		if p.Type == parts.TypeAssembly {
			rows = append(rows, row(
				btn("🔩 Zmontuj", "inv:asm:"+p.ID),
				btn("🔨 Rozmontuj", "inv:dis:"+p.ID),
			))
		}
	}
	rows = append(rows, row(btn("⬅️ Magazyn", "menu:inv")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func jobsKeyboard(u *users.User) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		row(btn("📋 Lista zleceń", "job:list")),
	}
	if u.Can(users.PermManageJobs) {
		rows = append(rows, row(btn("➕ Nowe zlecenie", "job:new")))
	}
	rows = append(rows, row(btn("⬅️ Menu", "nav:menu")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func jobKeyboard(j jobs.ServiceJob, u *users.User) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if u.Can(users.PermManageJobs) {
		switch j.Status {
		case jobs.StatusPending:
			rows = append(rows, row(btn("▶️ Rozpocznij", "job:start:"+j.ID), btn("✖️ Anuluj", "job:cancel:"+j.ID)))
		case jobs.StatusInProgress:
			rows = append(rows,
				row(btn("🔧 Użyj część", "job:consume:"+j.ID), btn("↩️ Zwrot części", "job:return:"+j.ID)),
				row(btn("✅ Zakończ", "job:finish:"+j.ID), btn("✖️ Anuluj", "job:cancel:"+j.ID)),
			)
		}
	}
	if u.Can(users.PermViewInventory) && !j.Status.Terminal() {
		rows = append(rows, row(btn("🛒 Picklist +", "job:pickadd:"+j.ID), btn("🗑 Picklist −", "job:pickrm:"+j.ID)))
	}
	rows = append(rows,
		row(btn("📤 Picklist XLSX", "job:picklist:"+j.ID), btn("🤖 Analiza AI", "job:advice:"+j.ID)),
		row(btn("⬅️ Zlecenia", "menu:jobs")),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func clientsKeyboard(u *users.User) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		row(btn("📋 Lista klientów", "cli:list")),
	}
	if u.Can(users.PermManageClients) {
		rows = append(rows, row(btn("➕ Nowy klient", "cli:new")))
	}
	rows = append(rows, row(btn("⬅️ Menu", "nav:menu")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func clientKeyboard(clientID string, u *users.User) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if u.Can(users.PermManageClients) {
		rows = append(rows, row(btn("➕ Dodaj maszynę", "cli:mach:"+clientID)))
	}
	rows = append(rows, row(btn("⬅️ Klienci", "menu:clients")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func usersKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("📋 Lista kont", "usr:list"), btn("➕ Nowe konto", "usr:new")),
		row(btn("⬅️ Menu", "nav:menu")),
	)
}

func roleKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(
			btn("Administrator", "usr:role:"+string(users.RoleAdmin)),
			btn("Magazynier", "usr:role:"+string(users.RoleWarehouse)),
			btn("Serwisant", "usr:role:"+string(users.RoleTechnician)),
		),
	)
}

func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range parts.Categories() {
		rows = append(rows, row(btn(categoryLabel(c), "part:cat:"+string(c))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func typeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(
			btn("Pojedyncza część", "part:type:"+string(parts.TypeSingle)),
			btn("Zestaw (BOM)", "part:type:"+string(parts.TypeAssembly)),
		),
	)
}

func settingsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("♻️ Przywróć dane fabryczne", "set:reset")),
		row(btn("⬅️ Menu", "nav:menu")),
	)
}

// pickKeyboard lists entities as one button per row with a shared
// callback prefix ("<prefix><id>").
func pickKeyboard(prefix string, ids, labels []string, backData string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := range ids {
		rows = append(rows, row(btn(labels[i], prefix+ids[i])))
	}
	rows = append(rows, row(btn("⬅️ Wróć", backData)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func categoryLabel(c parts.Category) string {
	switch c {
	case parts.CategoryCables:
		return "Linki"
	case parts.CategoryElectronics:
		return "Elektronika"
	case parts.CategoryUpholstery:
		return "Tapicerka"
	case parts.CategoryMechanical:
		return "Mechaniczne"
	case parts.CategoryConsumables:
		return "Eksploatacyjne"
	case parts.CategoryWearable:
		return "Części zużywalne"
	}
	return string(c)
}

func statusLabel(s jobs.Status) string {
	switch s {
	case jobs.StatusPending:
		return "Oczekujące"
	case jobs.StatusInProgress:
		return "W trakcie"
	case jobs.StatusCompleted:
		return "Zakończone"
	case jobs.StatusCanceled:
		return "Anulowane"
	}
	return string(s)
}

func roleLabel(r users.Role) string {
	switch r {
	case users.RoleAdmin:
		return "Administrator"
	case users.RoleWarehouse:
		return "Magazynier"
	case users.RoleTechnician:
		return "Serwisant"
	}
	return string(r)
}

func lowBadge(p parts.Part) string {
	if p.BelowMin() {
		return " ⚠️"
	}
	return ""
}

func fmtQty(p parts.Part) string {
	return fmt.Sprintf("%d szt.", p.Quantity)
}
