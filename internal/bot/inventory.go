package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/jacekopitek-cloud/gymfix/internal/dialog"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/parts"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/report"
)

func (b *Bot) onInventoryCallback(ctx context.Context, chatID int64, u *users.User, data string) {
	switch {
	case data == "inv:list":
		b.showPartList(chatID, b.registry.Parts(), "Części w magazynie:")
	case data == "inv:low":
		low := b.registry.LowStock()
		if len(low) == 0 {
			b.text(chatID, "Brak pozycji poniżej progu.")
			return
		}
		b.showPartList(chatID, low, "Pozycje na wyczerpaniu:")
	case data == "inv:export":
		b.exportInventory(chatID)
	case data == "inv:new":
		if err := users.Require(u, users.PermManageInventory); err != nil {
			b.text(chatID, presentErr(err))
			return
		}
		b.states.Set(chatID, dialog.StatePartName, dialog.Payload{})
		b.text(chatID, "Nazwa nowej części:")

	case strings.HasPrefix(data, "inv:item:"):
		b.showPartCard(chatID, u, strings.TrimPrefix(data, "inv:item:"))
	case strings.HasPrefix(data, "inv:addstock:"):
		id := strings.TrimPrefix(data, "inv:addstock:")
		b.states.Set(chatID, dialog.StateStockAddQty, dialog.Payload{"part_id": id})
		b.text(chatID, "Ilość do przyjęcia (ujemna = korekta w dół):")
	case strings.HasPrefix(data, "inv:asm:"):
		id := strings.TrimPrefix(data, "inv:asm:")
		b.states.Set(chatID, dialog.StateAssembleQty, dialog.Payload{"part_id": id})
		b.text(chatID, "Ile zestawów zmontować?")
	case strings.HasPrefix(data, "inv:dis:"):
		id := strings.TrimPrefix(data, "inv:dis:")
		b.states.Set(chatID, dialog.StateDisassembleQty, dialog.Payload{"part_id": id})
		b.text(chatID, "Ile zestawów rozmontować?")

	case strings.HasPrefix(data, "part:cat:"):
		b.handlePartCategory(chatID, parts.Category(strings.TrimPrefix(data, "part:cat:")))
	case strings.HasPrefix(data, "part:type:"):
		b.handlePartType(chatID, parts.Type(strings.TrimPrefix(data, "part:type:")))
	case strings.HasPrefix(data, "part:bom:add:"):
		b.handleBOMPick(chatID, strings.TrimPrefix(data, "part:bom:add:"))
	case data == "part:bom:done":
		b.finishPartFlow(ctx, chatID, u)
	}
}

func (b *Bot) showPartList(chatID int64, list []parts.Part, title string) {
	if len(list) == 0 {
		b.text(chatID, "Magazyn jest pusty.")
		return
	}
	ids := make([]string, len(list))
	labels := make([]string, len(list))
	for i, p := range list {
		kind := ""
		if p.Type == parts.TypeAssembly {
			kind = " [zestaw]"
		}
		ids[i] = p.ID
		labels[i] = fmt.Sprintf("%s (%s) — %s%s%s", p.Name, p.SKU, fmtQty(p), kind, lowBadge(p))
	}
	b.send(withKeyboard(chatID, title, pickKeyboard("inv:item:", ids, labels, "menu:inv")))
}

func (b *Bot) showPartCard(chatID int64, u *users.User, id string) {
	p, err := b.registry.Part(id)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s%s\nSKU: %s\nKategoria: %s\nStan: %s (próg: %d)\nCena: %s zł\nLokalizacja: %s\n",
		p.Name, lowBadge(p), p.SKU, categoryLabel(p.Category), fmtQty(p), p.MinLevel, p.Price.StringFixed(2), p.Location))
	if p.Type == parts.TypeAssembly {
		sb.WriteString("Skład (BOM):\n")
		for _, line := range p.BOM {
			name := line.PartID
			if comp, err := b.registry.Part(line.PartID); err == nil {
				name = comp.Name
			}
			sb.WriteString(fmt.Sprintf("  • %s × %d\n", name, line.Quantity))
		}
	}
	b.send(withKeyboard(chatID, sb.String(), partKeyboard(p, u)))
}

func (b *Bot) exportInventory(chatID int64) {
	buf, err := report.Inventory(b.registry.Parts())
	if err != nil {
		b.log.Error("inventory export failed", "err", err)
		b.text(chatID, "Nie udało się wygenerować pliku.")
		return
	}
	name := fmt.Sprintf("magazyn_%s.xlsx", time.Now().Format("20060102_150405"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: buf.Bytes()})
	doc.Caption = "Aktualny stan magazynu."
	b.send(doc)
}

func (b *Bot) parseQty(chatID int64, text string) (int, bool) {
	n, err := strconv.Atoi(text)
	if err != nil {
		b.text(chatID, "Podaj liczbę całkowitą.")
		return 0, false
	}
	return n, true
}

func (b *Bot) handleStockAddQty(ctx context.Context, chatID int64, st dialog.Item, text string) {
	amount, ok := b.parseQty(chatID, text)
	if !ok {
		return
	}
	u, ok := b.current(chatID)
	if !ok {
		return
	}
	partID, _ := dialog.GetString(st.Payload, "part_id")
	b.states.Reset(chatID)
	if err := b.stock.AddStock(ctx, u, partID, amount); err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showPartCard(chatID, u, partID)
}

func (b *Bot) handleAssembleQty(ctx context.Context, chatID int64, st dialog.Item, text string) {
	count, ok := b.parseQty(chatID, text)
	if !ok {
		return
	}
	u, ok := b.current(chatID)
	if !ok {
		return
	}
	partID, _ := dialog.GetString(st.Payload, "part_id")
	b.states.Reset(chatID)
	if err := b.stock.Assemble(ctx, u, partID, count); err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showPartCard(chatID, u, partID)
}

func (b *Bot) handleDisassembleQty(ctx context.Context, chatID int64, st dialog.Item, text string) {
	count, ok := b.parseQty(chatID, text)
	if !ok {
		return
	}
	u, ok := b.current(chatID)
	if !ok {
		return
	}
	partID, _ := dialog.GetString(st.Payload, "part_id")
	b.states.Reset(chatID)
	if err := b.stock.Disassemble(ctx, u, partID, count); err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showPartCard(chatID, u, partID)
}

// New part flow: name, sku, category, type, quantities, price, location,
// then a BOM picker for assemblies.

func (b *Bot) handlePartFlowText(ctx context.Context, chatID int64, st dialog.Item, text string) {
	p := st.Payload
	switch st.State {
	case dialog.StatePartName:
		p["name"] = text
		b.states.Set(chatID, dialog.StatePartSKU, p)
		b.text(chatID, "SKU:")
	case dialog.StatePartSKU:
		p["sku"] = text
		b.states.Set(chatID, dialog.StatePartCategory, p)
		b.send(withKeyboard(chatID, "Kategoria:", categoryKeyboard()))
	case dialog.StatePartQty:
		n, ok := b.parseQty(chatID, text)
		if !ok {
			return
		}
		if n < 0 {
			b.text(chatID, "Stan początkowy nie może być ujemny.")
			return
		}
		p["qty"] = n
		b.states.Set(chatID, dialog.StatePartMin, p)
		b.text(chatID, "Próg minimalny:")
	case dialog.StatePartMin:
		n, ok := b.parseQty(chatID, text)
		if !ok {
			return
		}
		if n < 0 {
			b.text(chatID, "Próg nie może być ujemny.")
			return
		}
		p["min"] = n
		b.states.Set(chatID, dialog.StatePartPrice, p)
		b.text(chatID, "Cena (zł):")
	case dialog.StatePartPrice:
		price, err := decimal.NewFromString(strings.ReplaceAll(text, ",", "."))
		if err != nil || price.IsNegative() {
			b.text(chatID, "Podaj nieujemną cenę, np. 45.00.")
			return
		}
		p["price"] = price.String()
		b.states.Set(chatID, dialog.StatePartLocation, p)
		b.text(chatID, "Lokalizacja (puste = Magazyn):")
	case dialog.StatePartLocation:
		p["location"] = text
		typ, _ := dialog.GetString(p, "type")
		if parts.Type(typ) == parts.TypeAssembly {
			b.states.Set(chatID, dialog.StatePartBOMPick, p)
			b.showBOMPicker(chatID, p)
			return
		}
		u, ok := b.current(chatID)
		if !ok {
			return
		}
		b.createPart(ctx, chatID, u, p)
	case dialog.StatePartBOMQty:
		n, ok := b.parseQty(chatID, text)
		if !ok {
			return
		}
		if n < 1 {
			b.text(chatID, "Ilość na jeden zestaw musi być co najmniej 1.")
			return
		}
		compID, _ := dialog.GetString(p, "bom_part")
		lines, _ := p["bom"].([]parts.BOMLine)
		p["bom"] = append(lines, parts.BOMLine{PartID: compID, Quantity: n})
		delete(p, "bom_part")
		b.states.Set(chatID, dialog.StatePartBOMPick, p)
		b.showBOMPicker(chatID, p)
	}
}

func (b *Bot) handlePartCategory(chatID int64, c parts.Category) {
	st := b.states.Get(chatID)
	if st.State != dialog.StatePartCategory {
		return
	}
	st.Payload["category"] = string(c)
	b.states.Set(chatID, dialog.StatePartType, st.Payload)
	b.send(withKeyboard(chatID, "Typ pozycji:", typeKeyboard()))
}

func (b *Bot) handlePartType(chatID int64, t parts.Type) {
	st := b.states.Get(chatID)
	if st.State != dialog.StatePartType {
		return
	}
	st.Payload["type"] = string(t)
	b.states.Set(chatID, dialog.StatePartQty, st.Payload)
	b.text(chatID, "Stan początkowy:")
}

func (b *Bot) showBOMPicker(chatID int64, p dialog.Payload) {
	var ids, labels []string
	for _, part := range b.registry.Parts() {
		if part.Type != parts.TypeSingle {
			continue
		}
		ids = append(ids, part.ID)
		labels = append(labels, fmt.Sprintf("%s (%s)", part.Name, part.SKU))
	}
	kb := pickKeyboard("part:bom:add:", ids, labels, "menu:inv")
	kb.InlineKeyboard = append([][]tgbotapi.InlineKeyboardButton{
		row(btn("✅ Zakończ skład", "part:bom:done")),
	}, kb.InlineKeyboard...)
	lines, _ := p["bom"].([]parts.BOMLine)
	title := fmt.Sprintf("Skład zestawu (%d pozycji). Wybierz komponent:", len(lines))
	b.send(withKeyboard(chatID, title, kb))
}

func (b *Bot) handleBOMPick(chatID int64, compID string) {
	st := b.states.Get(chatID)
	if st.State != dialog.StatePartBOMPick {
		return
	}
	st.Payload["bom_part"] = compID
	b.states.Set(chatID, dialog.StatePartBOMQty, st.Payload)
	b.text(chatID, "Ile sztuk na jeden zestaw?")
}

func (b *Bot) finishPartFlow(ctx context.Context, chatID int64, u *users.User) {
	st := b.states.Get(chatID)
	if st.State != dialog.StatePartBOMPick {
		return
	}
	b.createPart(ctx, chatID, u, st.Payload)
}

func (b *Bot) createPart(ctx context.Context, chatID int64, u *users.User, p dialog.Payload) {
	b.states.Reset(chatID)
	name, _ := dialog.GetString(p, "name")
	sku, _ := dialog.GetString(p, "sku")
	category, _ := dialog.GetString(p, "category")
	typ, _ := dialog.GetString(p, "type")
	location, _ := dialog.GetString(p, "location")
	priceStr, _ := dialog.GetString(p, "price")
	price, _ := decimal.NewFromString(priceStr)
	qty, _ := p["qty"].(int)
	minLevel, _ := p["min"].(int)
	bom, _ := p["bom"].([]parts.BOMLine)

	created, err := b.registry.AddPart(ctx, u, parts.Part{
		Name:     name,
		SKU:      sku,
		Category: parts.Category(category),
		Type:     parts.Type(typ),
		Quantity: qty,
		MinLevel: minLevel,
		Price:    price,
		Location: location,
		BOM:      bom,
	})
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showPartCard(chatID, u, created.ID)
}
