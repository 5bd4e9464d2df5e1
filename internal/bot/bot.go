package bot

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jacekopitek-cloud/gymfix/internal/accounts"
	"github.com/jacekopitek-cloud/gymfix/internal/advisor"
	"github.com/jacekopitek-cloud/gymfix/internal/auth"
	"github.com/jacekopitek-cloud/gymfix/internal/dialog"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/parts"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/ledger"
	"github.com/jacekopitek-cloud/gymfix/internal/registry"
	"github.com/jacekopitek-cloud/gymfix/internal/stock"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

// Bot is the operator surface. Every mutating action resolves the
// chat's session user and calls the permission-gated operation; the
// services decide, the bot only presents.
type Bot struct {
	api      *tgbotapi.BotAPI
	log      *slog.Logger
	auth     *auth.Manager
	states   *dialog.Repo
	stock    *stock.Engine
	ledger   *ledger.Service
	registry *registry.Service
	accounts *accounts.Service
	advisor  advisor.Advisor
	store    *store.Store
}

func New(api *tgbotapi.BotAPI, log *slog.Logger,
	authMgr *auth.Manager, states *dialog.Repo,
	stockEng *stock.Engine, ledgerSvc *ledger.Service,
	registrySvc *registry.Service, accountsSvc *accounts.Service,
	adv advisor.Advisor, st *store.Store) *Bot {

	return &Bot{
		api: api, log: log, auth: authMgr, states: states,
		stock: stockEng, ledger: ledgerSvc, registry: registrySvc,
		accounts: accountsSvc, advisor: adv, store: st,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) text(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Error("answer callback failed", "err", err)
	}
}

// presentErr maps service errors to operator-facing messages.
func presentErr(err error) string {
	switch {
	case errors.Is(err, users.ErrPermissionDenied):
		return "Brak uprawnień do tej operacji."
	case errors.Is(err, store.ErrNotFound):
		return "Nie znaleziono rekordu."
	case errors.Is(err, stock.ErrInsufficientStock):
		return "Brak części w magazynie!"
	case errors.Is(err, stock.ErrInsufficientComponents):
		return "Brak wystarczającej ilości komponentów."
	case errors.Is(err, stock.ErrInsufficientAssemblies):
		return "Brak wystarczającej ilości gotowych zestawów do rozebrania."
	case errors.Is(err, stock.ErrJobNotActive):
		return "Zlecenie nie jest w trakcie realizacji."
	case errors.Is(err, stock.ErrNotAssembly):
		return "Ta pozycja nie jest zestawem."
	case errors.Is(err, ledger.ErrInvalidTransition):
		return "Nieprawidłowa zmiana statusu zlecenia."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Błędny email lub hasło."
	case errors.Is(err, accounts.ErrEmailTaken):
		return "Ten email jest już zarejestrowany."
	case errors.Is(err, accounts.ErrSelfDelete):
		return "Nie możesz usunąć własnego konta."
	case errors.Is(err, parts.ErrInvalid),
		errors.Is(err, ledger.ErrInvalid),
		errors.Is(err, registry.ErrInvalidClient),
		errors.Is(err, accounts.ErrInvalid):
		return "Nieprawidłowe dane: " + err.Error()
	}
	return "Operacja nie powiodła się."
}

// current resolves the session user; when absent it prompts for login.
func (b *Bot) current(chatID int64) (*users.User, bool) {
	u := b.auth.Current(chatID)
	if u == nil {
		b.text(chatID, "Zaloguj się najpierw: /login")
		return nil, false
	}
	return u, true
}
