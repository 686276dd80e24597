package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"productcopy-core/internal/domain/entity"
)

// fakeGenerator answers by prompt kind: quality prompts get the scripted
// assessments in order, drafts are numbered, SEO prompts get fixed text.
type fakeGenerator struct {
	mu          sync.Mutex
	assessments []string
	failOn      string // prompts containing this substring fail
	prompts     []string
	drafts      int
	evals       int
}

var errUpstream = errors.New("upstream returned 503")

func (f *fakeGenerator) Generate(_ context.Context, _ string, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if f.failOn != "" && strings.Contains(prompt, f.failOn) {
		return "", errUpstream
	}

	switch {
	case strings.Contains(prompt, "kwaliteitsbeoordelaar"):
		i := min(f.evals, len(f.assessments)-1)
		f.evals++
		if i < 0 {
			return "", nil
		}
		return f.assessments[i], nil
	case strings.Contains(prompt, "meta-beschrijving"):
		return "Ontdek het *nieuwe* apparaat.", nil
	case strings.Contains(prompt, "SEO-titel"):
		return "**Koffiezetapparaat** kopen", nil
	default:
		f.drafts++
		return fmt.Sprintf("## Concept %d\nTekst *ronde* %d", f.drafts, f.drafts), nil
	}
}

func (f *fakeGenerator) draftPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.prompts {
		if isDraftPrompt(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeGenerator) improvePrompts() int {
	n := 0
	for _, p := range f.draftPrompts() {
		if strings.HasPrefix(p, improvePromptIntro) {
			n++
		}
	}
	return n
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func isDraftPrompt(p string) bool {
	return strings.Contains(p, "gespecialiseerd in het schrijven") || strings.HasPrefix(p, improvePromptIntro)
}

func assessment(score int, feedback string) string {
	return fmt.Sprintf("SCORE: %d\nFEEDBACK: %s", score, feedback)
}

type paymentRow struct {
	email  string
	tier   entity.Tier
	amount int
}

// fakeLedger records every call; readErr degrades reads, writeErr fails writes.
type fakeLedger struct {
	mu          sync.Mutex
	usage       map[string]int
	perUse      map[string]int
	unlimited   map[string]bool
	readErr     error
	writeErr    error
	reads       map[string]int
	generations []entity.GenerationRecord
	payments    []paymentRow
	checkouts   []entity.Checkout
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		usage:     map[string]int{},
		perUse:    map[string]int{},
		unlimited: map[string]bool{},
		reads:     map[string]int{},
	}
}

func (l *fakeLedger) UsageCount(_ context.Context, email string) entity.Outcome[int] {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads["usage"]++
	if l.readErr != nil {
		return entity.Degraded(0, l.readErr)
	}
	return entity.Ok(l.usage[email])
}

func (l *fakeLedger) HasUnlimitedPayment(_ context.Context, email string) entity.Outcome[bool] {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads["unlimited"]++
	if l.readErr != nil {
		return entity.Degraded(false, l.readErr)
	}
	return entity.Ok(l.unlimited[email])
}

func (l *fakeLedger) CountPerUsePayments(_ context.Context, email string) entity.Outcome[int] {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads["per_use"]++
	if l.readErr != nil {
		return entity.Degraded(0, l.readErr)
	}
	return entity.Ok(l.perUse[email])
}

func (l *fakeLedger) TotalGenerations(_ context.Context, _ string) entity.Outcome[int] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readErr != nil {
		return entity.Degraded(0, l.readErr)
	}
	return entity.Ok(len(l.generations))
}

func (l *fakeLedger) IncrementUsage(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeErr != nil {
		return l.writeErr
	}
	l.usage[email]++
	return nil
}

func (l *fakeLedger) RecordPayment(_ context.Context, email string, tier entity.Tier, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeErr != nil {
		return l.writeErr
	}
	l.payments = append(l.payments, paymentRow{email, tier, amount})
	return nil
}

func (l *fakeLedger) RecordGeneration(_ context.Context, rec entity.GenerationRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeErr != nil {
		return l.writeErr
	}
	l.generations = append(l.generations, rec)
	return nil
}

func (l *fakeLedger) RecordCheckout(_ context.Context, _ string, c entity.Checkout) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeErr != nil {
		return l.writeErr
	}
	l.checkouts = append(l.checkouts, c)
	return nil
}

type sentMail struct {
	to, template string
	data         map[string]string
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (n *fakeNotifier) Notify(_ context.Context, to, template string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to, template, data})
	return n.err
}

type fakeEmbedder struct{ err error }

func (e fakeEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

type fakeArchive struct {
	mu    sync.Mutex
	items []entity.ArchivedDescription
	limit uint64
}

func (a *fakeArchive) Save(_ context.Context, item entity.ArchivedDescription, _ []float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append(a.items, item)
	return nil
}

func (a *fakeArchive) Search(_ context.Context, _ []float32, limit uint64) ([]entity.ArchivedDescription, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.limit = limit
	n := min(int(limit), len(a.items))
	return a.items[:n], nil
}

func sampleRequest() entity.GenerationRequest {
	return entity.GenerationRequest{
		Name:            "Anna",
		Email:           "anna@example.com",
		ProductName:     "Koffiezetapparaat",
		ProductFeatures: "15 bar, melkopschuimer, RVS",
		TargetAudience:  "thuisbarista's",
		Tone:            "speels",
	}
}
