package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Placeholder is returned whenever the advice boundary cannot deliver.
// Advice is a side channel: its failure never affects job or stock state.
const Placeholder = "Asystent AI jest niedostępny. Spróbuj ponownie później."

// Advisor suggests likely causes and candidate parts for a repair job.
type Advisor interface {
	Analyze(ctx context.Context, machineModel, description string, availableParts []string) string
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Analyze(context.Context, string, string, []string) string { return Placeholder }

// Gemini calls the Generative Language REST endpoint and fails open.
type Gemini struct {
	apiKey string
	model  string
	client *http.Client
	log    *slog.Logger
}

func NewGemini(apiKey, model string, log *slog.Logger) *Gemini {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Gemini{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Analyze(ctx context.Context, machineModel, description string, availableParts []string) string {
	prompt := fmt.Sprintf(`Jesteś ekspertem serwisowym sprzętu fitness.
Maszyna: %s
Problem zgłoszony przez klienta: %s

Dostępne części w magazynie (nazwy): %s.

Twoje zadanie:
1. Podaj 3 prawdopodobne przyczyny usterki.
2. Zasugeruj, które z dostępnych części mogą być potrzebne do naprawy.
3. Jeśli brakuje części w magazynie, zasugeruj co należy domówić.

Odpowiedź sformatuj jako zwięzłą listę punktowaną w języku Polskim. Nie używaj Markdown (tylko czysty tekst z myślnikami).`,
		machineModel, description, strings.Join(availableParts, ", "))

	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}})
	if err != nil {
		g.log.Error("advisor: encode request", "err", err)
		return Placeholder
	}
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		g.log.Error("advisor: build request", "err", err)
		return Placeholder
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("advisor: request failed", "err", err)
		return Placeholder
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		g.log.Warn("advisor: unexpected status", "status", resp.Status)
		return Placeholder
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		g.log.Warn("advisor: decode response", "err", err)
		return Placeholder
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Placeholder
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return Placeholder
	}
	return text
}
