package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jacekopitek-cloud/gymfix/internal/dialog"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/jobs"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/parts"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/report"
)

func (b *Bot) onJobCallback(ctx context.Context, chatID int64, u *users.User, data string) {
	switch {
	case data == "job:list":
		b.showJobList(chatID)
	case data == "job:new":
		if err := users.Require(u, users.PermManageJobs); err != nil {
			b.text(chatID, presentErr(err))
			return
		}
		b.showClientPickerForJob(chatID)

	case strings.HasPrefix(data, "job:item:"):
		b.showJobCard(chatID, u, strings.TrimPrefix(data, "job:item:"))
	case strings.HasPrefix(data, "job:cli:"):
		b.handleJobClientPick(chatID, strings.TrimPrefix(data, "job:cli:"))
	case strings.HasPrefix(data, "job:mach:"):
		b.handleJobMachinePick(chatID, strings.TrimPrefix(data, "job:mach:"))

	case strings.HasPrefix(data, "job:start:"):
		id := strings.TrimPrefix(data, "job:start:")
		b.runJobOp(chatID, u, id, b.ledger.Start(ctx, u, id))
	case strings.HasPrefix(data, "job:cancel:"):
		id := strings.TrimPrefix(data, "job:cancel:")
		b.runJobOp(chatID, u, id, b.ledger.Cancel(ctx, u, id))
	case strings.HasPrefix(data, "job:finish:"):
		id := strings.TrimPrefix(data, "job:finish:")
		b.states.Set(chatID, dialog.StateJobNotes, dialog.Payload{"job_id": id})
		b.text(chatID, "Notatki serwisanta:")

	case strings.HasPrefix(data, "job:consume:"):
		b.showJobPartPicker(chatID, strings.TrimPrefix(data, "job:consume:"), "job:use:", availableParts(b.registry.Parts()))
	case strings.HasPrefix(data, "job:use:"):
		jobID, partID, ok := splitPair(strings.TrimPrefix(data, "job:use:"))
		if ok {
			b.runJobOp(chatID, u, jobID, b.stock.ConsumeForJob(ctx, u, jobID, partID))
		}
	case strings.HasPrefix(data, "job:return:"):
		b.showUsedPartPicker(chatID, strings.TrimPrefix(data, "job:return:"), "job:ret:")
	case strings.HasPrefix(data, "job:ret:"):
		jobID, partID, ok := splitPair(strings.TrimPrefix(data, "job:ret:"))
		if ok {
			b.runJobOp(chatID, u, jobID, b.stock.ReturnFromJob(ctx, u, jobID, partID))
		}

	case strings.HasPrefix(data, "job:pickadd:"):
		b.showJobPartPicker(chatID, strings.TrimPrefix(data, "job:pickadd:"), "job:pka:", b.registry.Parts())
	case strings.HasPrefix(data, "job:pka:"):
		jobID, partID, ok := splitPair(strings.TrimPrefix(data, "job:pka:"))
		if ok {
			b.runJobOp(chatID, u, jobID, b.ledger.AddToPicklist(ctx, u, jobID, partID))
		}
	case strings.HasPrefix(data, "job:pickrm:"):
		b.showPicklistPicker(chatID, strings.TrimPrefix(data, "job:pickrm:"), "job:pkr:")
	case strings.HasPrefix(data, "job:pkr:"):
		jobID, partID, ok := splitPair(strings.TrimPrefix(data, "job:pkr:"))
		if ok {
			b.runJobOp(chatID, u, jobID, b.ledger.RemoveFromPicklist(ctx, u, jobID, partID))
		}

	case strings.HasPrefix(data, "job:picklist:"):
		b.exportPicklist(chatID, strings.TrimPrefix(data, "job:picklist:"))
	case strings.HasPrefix(data, "job:advice:"):
		b.handleAdvice(ctx, chatID, u, strings.TrimPrefix(data, "job:advice:"))
	}
}

func splitPair(s string) (string, string, bool) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

func availableParts(all []parts.Part) []parts.Part {
	out := all[:0:0]
	for _, p := range all {
		if p.Quantity > 0 {
			out = append(out, p)
		}
	}
	return out
}

// runJobOp presents the operation result and re-renders the job card.
func (b *Bot) runJobOp(chatID int64, u *users.User, jobID string, err error) {
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showJobCard(chatID, u, jobID)
}

func (b *Bot) showJobList(chatID int64) {
	list := b.ledger.List()
	if len(list) == 0 {
		b.text(chatID, "Brak zleceń.")
		return
	}
	ids := make([]string, len(list))
	labels := make([]string, len(list))
	for i, j := range list {
		ids[i] = j.ID
		labels[i] = fmt.Sprintf("%s / %s — %s", j.ClientName, j.MachineModel, statusLabel(j.Status))
	}
	b.send(withKeyboard(chatID, "Zlecenia serwisowe:", pickKeyboard("job:item:", ids, labels, "menu:jobs")))
}

func (b *Bot) showJobCard(chatID int64, u *users.User, id string) {
	j, err := b.ledger.Job(id)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Zlecenie: %s\nMaszyna: %s\nStatus: %s\nData: %s\nOpis: %s\n",
		j.ClientName, j.MachineModel, statusLabel(j.Status), j.DateCreated.Format("2006-01-02"), j.Description))
	if len(j.UsedParts) > 0 {
		sb.WriteString("Użyte części:\n")
		for _, up := range j.UsedParts {
			sb.WriteString(fmt.Sprintf("  • %s × %d\n", b.partName(up.PartID), up.Quantity))
		}
	}
	if len(j.Picklist) > 0 {
		sb.WriteString("Picklist:\n")
		for _, pl := range j.Picklist {
			sb.WriteString(fmt.Sprintf("  • %s × %d\n", b.partName(pl.PartID), pl.Quantity))
		}
	}
	if j.TechnicianNotes != "" {
		sb.WriteString("Notatki: " + j.TechnicianNotes + "\n")
	}
	if j.AIAnalysis != "" {
		sb.WriteString("Analiza AI:\n" + j.AIAnalysis + "\n")
	}
	b.send(withKeyboard(chatID, sb.String(), jobKeyboard(j, u)))
}

func (b *Bot) partName(id string) string {
	if p, err := b.registry.Part(id); err == nil {
		return p.Name
	}
	return id
}

func (b *Bot) showClientPickerForJob(chatID int64) {
	list := b.registry.Clients()
	if len(list) == 0 {
		b.text(chatID, "Najpierw dodaj klienta.")
		return
	}
	ids := make([]string, len(list))
	labels := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
		labels[i] = c.Name
	}
	b.send(withKeyboard(chatID, "Klient zlecenia:", pickKeyboard("job:cli:", ids, labels, "menu:jobs")))
}

func (b *Bot) handleJobClientPick(chatID int64, clientID string) {
	c, err := b.registry.Client(clientID)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	if len(c.Machines) == 0 {
		b.text(chatID, "Ten klient nie ma zarejestrowanych maszyn.")
		return
	}
	b.states.Set(chatID, dialog.StateJobPickMachine, dialog.Payload{"client_name": c.Name})
	ids := make([]string, len(c.Machines))
	labels := make([]string, len(c.Machines))
	for i, m := range c.Machines {
		ids[i] = clientID + ":" + m.ID
		labels[i] = fmt.Sprintf("%s (%s)", m.Model, m.SerialNumber)
	}
	b.send(withKeyboard(chatID, "Maszyna:", pickKeyboard("job:mach:", ids, labels, "menu:jobs")))
}

func (b *Bot) handleJobMachinePick(chatID int64, pair string) {
	clientID, machineID, ok := splitPair(pair)
	if !ok {
		return
	}
	st := b.states.Get(chatID)
	if st.State != dialog.StateJobPickMachine {
		return
	}
	c, err := b.registry.Client(clientID)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	for _, m := range c.Machines {
		if m.ID == machineID {
			st.Payload["machine_model"] = m.Model
			b.states.Set(chatID, dialog.StateJobDesc, st.Payload)
			b.text(chatID, "Opis usterki:")
			return
		}
	}
	b.text(chatID, "Nie znaleziono maszyny.")
}

func (b *Bot) handleJobDesc(ctx context.Context, chatID int64, st dialog.Item, text string) {
	u, ok := b.current(chatID)
	if !ok {
		return
	}
	clientName, _ := dialog.GetString(st.Payload, "client_name")
	machineModel, _ := dialog.GetString(st.Payload, "machine_model")
	b.states.Reset(chatID)
	j, err := b.ledger.Create(ctx, u, clientName, machineModel, text)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showJobCard(chatID, u, j.ID)
}

func (b *Bot) handleJobNotes(ctx context.Context, chatID int64, st dialog.Item, text string) {
	u, ok := b.current(chatID)
	if !ok {
		return
	}
	jobID, _ := dialog.GetString(st.Payload, "job_id")
	b.states.Reset(chatID)
	b.runJobOp(chatID, u, jobID, b.ledger.Finish(ctx, u, jobID, text))
}

func (b *Bot) showJobPartPicker(chatID int64, jobID, prefix string, list []parts.Part) {
	if len(list) == 0 {
		b.text(chatID, "Brak dostępnych części.")
		return
	}
	ids := make([]string, len(list))
	labels := make([]string, len(list))
	for i, p := range list {
		ids[i] = jobID + ":" + p.ID
		labels[i] = fmt.Sprintf("%s (%s) — %s", p.Name, p.SKU, fmtQty(p))
	}
	b.send(withKeyboard(chatID, "Wybierz część:", pickKeyboard(prefix, ids, labels, "job:item:"+jobID)))
}

func (b *Bot) showUsedPartPicker(chatID int64, jobID, prefix string) {
	j, err := b.ledger.Job(jobID)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showUsagePicker(chatID, jobID, prefix, j.UsedParts, "Zlecenie nie ma użytych części.")
}

func (b *Bot) showPicklistPicker(chatID int64, jobID, prefix string) {
	j, err := b.ledger.Job(jobID)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showUsagePicker(chatID, jobID, prefix, j.Picklist, "Picklist jest pusty.")
}

func (b *Bot) showUsagePicker(chatID int64, jobID, prefix string, usage []jobs.PartUsage, emptyMsg string) {
	if len(usage) == 0 {
		b.text(chatID, emptyMsg)
		return
	}
	ids := make([]string, len(usage))
	labels := make([]string, len(usage))
	for i, upart := range usage {
		ids[i] = jobID + ":" + upart.PartID
		labels[i] = fmt.Sprintf("%s × %d", b.partName(upart.PartID), upart.Quantity)
	}
	b.send(withKeyboard(chatID, "Wybierz pozycję:", pickKeyboard(prefix, ids, labels, "job:item:"+jobID)))
}

func (b *Bot) exportPicklist(chatID int64, jobID string) {
	j, err := b.ledger.Job(jobID)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	buf, err := report.Picklist(j, func(id string) (parts.Part, bool) {
		p, err := b.registry.Part(id)
		return p, err == nil
	})
	if err != nil {
		b.log.Error("picklist export failed", "err", err)
		b.text(chatID, "Nie udało się wygenerować pliku.")
		return
	}
	name := fmt.Sprintf("picklist_%s.xlsx", time.Now().Format("20060102_150405"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: buf.Bytes()})
	doc.Caption = fmt.Sprintf("Picklist dla %s / %s.", j.ClientName, j.MachineModel)
	b.send(doc)
}

// handleAdvice asks the advisor and stores the answer on the job. A
// failing advisor only degrades to a placeholder message.
func (b *Bot) handleAdvice(ctx context.Context, chatID int64, u *users.User, jobID string) {
	j, err := b.ledger.Job(jobID)
	if err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	var names []string
	for _, p := range availableParts(b.registry.Parts()) {
		names = append(names, p.Name)
	}
	analysis := b.advisor.Analyze(ctx, j.MachineModel, j.Description, names)
	if err := b.ledger.AttachAnalysis(ctx, u, jobID, analysis); err != nil {
		b.text(chatID, presentErr(err))
		return
	}
	b.showJobCard(chatID, u, jobID)
}
